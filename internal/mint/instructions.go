// Package mint builds and submits the token mint transaction.
package mint

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"

	"token-forge/internal/domain"
)

// Plan is everything needed to assemble the mint transaction.
type Plan struct {
	Payer        common.PublicKey
	Mint         common.PublicKey
	FeeRecipient common.PublicKey

	Decimals     uint8
	Amount       uint64 // supply in base units
	RentLamports uint64
	FeeLamports  uint64

	// RevokeFreeze initializes the mint without a freeze authority.
	RevokeFreeze bool
	// RevokeMintInline appends SetAuthority(MintTokens -> none). Only valid when no
	// metadata follows, since metadata creation needs the mint authority.
	RevokeMintInline bool
}

// NewPlan derives a Plan from params.
func NewPlan(p *domain.CoinCreationParams, payer, mint, feeRecipient common.PublicKey, rentLamports, feeLamports uint64) (Plan, error) {
	amount, err := p.BaseUnitsUint64()
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Payer:            payer,
		Mint:             mint,
		FeeRecipient:     feeRecipient,
		Decimals:         p.Decimals,
		Amount:           amount,
		RentLamports:     rentLamports,
		FeeLamports:      feeLamports,
		RevokeFreeze:     p.RevokeFreeze,
		RevokeMintInline: p.RevokeMint && !p.IncludeMetadata,
	}, nil
}

// BuildInstructions returns, in order: create mint account, initialize mint, create the
// payer's associated token account, mint the supply to it, transfer the service fee and,
// when requested, revoke the mint authority.
func BuildInstructions(p Plan) ([]types.Instruction, error) {
	ata, _, err := common.FindAssociatedTokenAddress(p.Payer, p.Mint)
	if err != nil {
		return nil, err
	}

	var freezeAuth *common.PublicKey
	if !p.RevokeFreeze {
		payer := p.Payer
		freezeAuth = &payer
	}

	ins := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     p.Payer,
			New:      p.Mint,
			Owner:    common.TokenProgramID,
			Lamports: p.RentLamports,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   p.Decimals,
			Mint:       p.Mint,
			MintAuth:   p.Payer,
			FreezeAuth: freezeAuth,
		}),
		associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 p.Payer,
			Owner:                  p.Payer,
			Mint:                   p.Mint,
			AssociatedTokenAccount: ata,
		}),
		token.MintTo(token.MintToParam{
			Mint:   p.Mint,
			To:     ata,
			Auth:   p.Payer,
			Amount: p.Amount,
		}),
		system.Transfer(system.TransferParam{
			From:   p.Payer,
			To:     p.FeeRecipient,
			Amount: p.FeeLamports,
		}),
	}

	if p.RevokeMintInline {
		ins = append(ins, RevokeMintInstruction(p.Mint, p.Payer))
	}
	return ins, nil
}

// RevokeMintInstruction sets the mint authority of mint to none.
func RevokeMintInstruction(mint, authority common.PublicKey) types.Instruction {
	return token.SetAuthority(token.SetAuthorityParam{
		Account:  mint,
		NewAuth:  nil,
		AuthType: token.AuthorityTypeMintTokens,
		Auth:     authority,
	})
}
