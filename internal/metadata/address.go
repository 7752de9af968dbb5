package metadata

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"

	"token-forge/internal/domain"
	"token-forge/internal/solana"
)

// Address returns the metadata account of mint: the program derived address of
// ["metadata", metadata program id, mint] under the token metadata program.
func Address(mint string) (string, error) {
	mintBytes, err := solana.DecodeAddress(mint)
	if err != nil {
		return "", fmt.Errorf("mint: %w", err)
	}
	program, err := solana.DecodeAddress(solana.TokenMetadataProgramID)
	if err != nil {
		return "", err
	}
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("metadata"), program, mintBytes}, solana.TokenMetadataProgramID)
	if err != nil {
		return "", fmt.Errorf("derive metadata address: %w", err)
	}
	return addr, nil
}

// CreateInstruction builds CreateMetadataAccountV3 for mint with payer as mint authority,
// update authority and sole verified creator. The account stays mutable unless
// p.RevokeUpdate is set.
func CreateInstruction(p *domain.CoinCreationParams, mint, payer common.PublicKey, uri string) (types.Instruction, string, error) {
	addr, err := Address(mint.ToBase58())
	if err != nil {
		return types.Instruction{}, "", err
	}

	ins := token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                common.PublicKeyFromString(addr),
		Mint:                    mint,
		MintAuthority:           payer,
		Payer:                   payer,
		UpdateAuthority:         payer,
		UpdateAuthorityIsSigner: true,
		IsMutable:               !p.RevokeUpdate,
		Data: token_metadata.DataV2{
			Name:                 p.Name,
			Symbol:               p.Symbol,
			Uri:                  uri,
			SellerFeeBasisPoints: 0,
			Creators: &[]token_metadata.Creator{
				{Address: payer, Verified: true, Share: 100},
			},
		},
	})
	return ins, addr, nil
}
