package mint

import (
	"encoding/binary"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-forge/internal/domain"
)

func dogeParams() *domain.CoinCreationParams {
	return &domain.CoinCreationParams{
		Name:       "Solana Doge",
		Symbol:     "SDOGE",
		Supply:     1_000_000_000,
		Decimals:   9,
		RevokeMint: true,
	}
}

func buildFor(t *testing.T, p *domain.CoinCreationParams) (Plan, []types.Instruction) {
	t.Helper()
	payer := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey
	owner := common.PublicKeyFromString("6ASNcMLW2rQjt11hWzh9J4TFKUVJHVXUAcyDR9JNcawh")

	plan, err := NewPlan(p, payer, mint, owner, 1461600, 200_000_000)
	require.NoError(t, err)
	ins, err := BuildInstructions(plan)
	require.NoError(t, err)
	return plan, ins
}

func TestBuildInstructions_OrderWithInlineRevoke(t *testing.T) {
	plan, ins := buildFor(t, dogeParams())

	require.Len(t, ins, 6)
	programs := []common.PublicKey{
		common.SystemProgramID,
		common.TokenProgramID,
		common.SPLAssociatedTokenAccountProgramID,
		common.TokenProgramID,
		common.SystemProgramID,
		common.TokenProgramID,
	}
	for i, want := range programs {
		assert.Equal(t, want, ins[i].ProgramID, "instruction %d", i)
	}

	// token program instruction tags: InitializeMint=0, MintTo=7, SetAuthority=6
	assert.Equal(t, byte(0), ins[1].Data[0])
	assert.Equal(t, byte(9), ins[1].Data[1])
	assert.Equal(t, byte(7), ins[3].Data[0])
	assert.Equal(t, uint64(1_000_000_000_000_000_000), binary.LittleEndian.Uint64(ins[3].Data[1:9]))
	assert.Equal(t, byte(6), ins[5].Data[0])

	// system transfer: tag 2, then lamports
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(ins[4].Data[0:4]))
	assert.Equal(t, uint64(200_000_000), binary.LittleEndian.Uint64(ins[4].Data[4:12]))
	assert.Equal(t, plan.FeeRecipient, ins[4].Accounts[1].PubKey)
}

func TestBuildInstructions_RevokeDeferredWithMetadata(t *testing.T) {
	p := dogeParams()
	p.IncludeMetadata = true

	plan, ins := buildFor(t, p)

	assert.False(t, plan.RevokeMintInline)
	require.Len(t, ins, 5)
	for _, in := range ins {
		if in.ProgramID == common.TokenProgramID {
			assert.NotEqual(t, byte(6), in.Data[0], "SetAuthority must not be in the mint transaction")
		}
	}
}

func TestBuildInstructions_FreezeAuthority(t *testing.T) {
	p := dogeParams()
	_, ins := buildFor(t, p)
	assert.Equal(t, byte(1), ins[1].Data[34], "freeze authority set to payer")

	p.RevokeFreeze = true
	_, ins = buildFor(t, p)
	assert.Equal(t, byte(0), ins[1].Data[34], "freeze authority omitted")
}

func TestNewPlan_Overflow(t *testing.T) {
	p := dogeParams()
	p.Supply = 100_000_000_000
	_, err := NewPlan(p, common.PublicKey{}, common.PublicKey{}, common.PublicKey{}, 0, 0)
	assert.Error(t, err)
}
