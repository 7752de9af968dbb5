package metadata_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-forge/internal/apperr"
	"token-forge/internal/domain"
	"token-forge/internal/metadata"
	"token-forge/internal/mint"
	"token-forge/internal/pinning"
	"token-forge/internal/solana"
	"token-forge/internal/solana/stub"
	"token-forge/internal/txn"
	"token-forge/internal/wallet"
)

const feeOwner = "6ASNcMLW2rQjt11hWzh9J4TFKUVJHVXUAcyDR9JNcawh"

type fakePinner struct {
	mu      sync.Mutex
	names   []string
	docs    []interface{}
	fileErr error
}

func (f *fakePinner) PinFile(_ context.Context, name, _ string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, name)
	if f.fileErr != nil {
		return "", f.fileErr
	}
	return "bafyimage", nil
}

func (f *fakePinner) PinJSON(_ context.Context, name string, v interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, name)
	f.docs = append(f.docs, v)
	return "bafymeta", nil
}

func (f *fakePinner) GatewayURL(cid string) string {
	return pinning.GatewayURL(pinning.DefaultGateway, cid)
}

type fakeValidator struct {
	imageErr error
	outcome  domain.ValidationOutcome
	metaErr  error
}

func (v *fakeValidator) ValidateImage(context.Context, string) error { return v.imageErr }

func (v *fakeValidator) ValidateMetadata(context.Context, string) (domain.ValidationOutcome, error) {
	if v.metaErr != nil {
		return "", v.metaErr
	}
	return v.outcome, nil
}

type fixture struct {
	rpc       *stub.RPCClient
	pinner    *fakePinner
	validator *fakeValidator
	pipeline  *metadata.Pipeline
	wallet    *wallet.KeypairProvider
	payer     types.Account
	mint      string
	steps     []string
}

func newFixture(t *testing.T, waitTimeout time.Duration) *fixture {
	t.Helper()
	rpc := stub.NewRPCClient()
	confirmer := solana.NewConfirmer(rpc, solana.WithPollInterval(time.Millisecond))
	sender := txn.NewSender(rpc, confirmer, time.Second, nil)
	builder, err := mint.NewBuilder(rpc, sender, feeOwner)
	require.NoError(t, err)

	f := &fixture{
		rpc:       rpc,
		pinner:    &fakePinner{},
		validator: &fakeValidator{outcome: domain.ValidationValid},
		payer:     types.NewAccount(),
		mint:      types.NewAccount().PublicKey.ToBase58(),
	}
	f.wallet = wallet.NewKeypairProvider(f.payer.PrivateKey)
	require.NoError(t, f.wallet.Connect(context.Background()))

	waiter := solana.NewAccountWaiter(rpc, waitTimeout, nil).WithIntervals(time.Millisecond, 5*time.Millisecond)
	f.pipeline = metadata.NewPipeline(waiter, f.pinner, f.validator, sender, builder,
		metadata.WithStepObserver(func(step string, _ time.Duration, _ error) {
			f.steps = append(f.steps, step)
		}))
	return f
}

func dogeParams() *domain.CoinCreationParams {
	return &domain.CoinCreationParams{
		Name:            "Solana Doge",
		Symbol:          "SDOGE",
		Description:     "much token",
		Supply:          1_000_000_000,
		Decimals:        9,
		RevokeMint:      true,
		RevokeUpdate:    true,
		IncludeMetadata: true,
		Image:           &domain.ImageFile{Name: "doge.png", ContentType: "image/png", Data: []byte{1, 2, 3}},
	}
}

func programOf(t *testing.T, raw []byte) (common.PublicKey, []byte) {
	t.Helper()
	tx, err := types.TransactionDeserialize(raw)
	require.NoError(t, err)
	require.Len(t, tx.Message.Instructions, 1)
	in := tx.Message.Instructions[0]
	return tx.Message.Accounts[in.ProgramIDIndex], in.Data
}

func TestAddress_MatchesSDKDerivation(t *testing.T) {
	mintKey := types.NewAccount().PublicKey

	got, err := metadata.Address(mintKey.ToBase58())
	require.NoError(t, err)

	want, err := token_metadata.GetTokenMetaPubkey(mintKey)
	require.NoError(t, err)
	assert.Equal(t, want.ToBase58(), got)
	assert.False(t, solana.IsOnCurveAddress(got))
}

func TestAddress_InvalidMint(t *testing.T) {
	_, err := metadata.Address("not-a-mint")
	assert.ErrorIs(t, err, solana.ErrInvalidAddress)
}

func TestBuildDocument(t *testing.T) {
	p := dogeParams()
	p.Socials = domain.SocialLinks{
		{Platform: domain.PlatformTwitter, URL: "https://x.com/sdoge"},
		{Platform: domain.PlatformWebsite, URL: "https://sdoge.io"},
	}

	doc := metadata.BuildDocument(p, "https://gateway.pinata.cloud/ipfs/bafyimage", "Payer111")

	assert.Equal(t, "Solana Doge", doc.Name)
	assert.Equal(t, "SDOGE", doc.Symbol)
	assert.Equal(t, []domain.MetadataAttribute{
		{TraitType: "Total Supply", Value: "1000000000"},
		{TraitType: "Decimals", Value: "9"},
		{TraitType: "Creator", Value: "Anonymous"},
	}, doc.Attributes)
	assert.Equal(t, []domain.MetadataFile{{URI: "https://gateway.pinata.cloud/ipfs/bafyimage", Type: "image/png"}}, doc.Properties.Files)
	assert.Equal(t, "image", doc.Properties.Category)
	assert.Equal(t, []domain.MetadataCreator{{Address: "Payer111", Share: 100}}, doc.Properties.Creators)
	assert.Equal(t, "https://sdoge.io", doc.ExternalURL)
	assert.Equal(t, "https://x.com/sdoge", doc.Extensions["twitter"])
}

func TestBuildDocument_NoImageNoSocials(t *testing.T) {
	p := dogeParams()
	p.AuthorName = "Shibe"

	doc := metadata.BuildDocument(p, "", "Payer111")

	assert.Empty(t, doc.Properties.Files)
	assert.NotNil(t, doc.Properties.Files)
	assert.Nil(t, doc.Extensions)
	assert.Equal(t, "Shibe", doc.Attributes[2].Value)
}

func TestPipeline_RevokesAfterMetadata(t *testing.T) {
	f := newFixture(t, time.Second)
	f.rpc.AddAccount(f.mint, &solana.AccountInfo{Owner: solana.TokenProgramID})

	out, err := f.pipeline.Run(context.Background(), dogeParams(), f.wallet, f.mint)
	require.NoError(t, err)

	assert.Equal(t, []string{"SDOGE_image", "SDOGE_metadata"}, f.pinner.names)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/bafyimage", out.ImageURL)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/bafymeta", out.URI)
	assert.Equal(t, domain.ValidationValid, out.Validation)
	assert.NotEmpty(t, out.Signature)
	assert.NotEmpty(t, out.RevokeSignature)

	wantAddr, err := metadata.Address(f.mint)
	require.NoError(t, err)
	assert.Equal(t, wantAddr, out.MetadataAddress)

	require.Equal(t, 2, f.rpc.SentCount())
	program, _ := programOf(t, f.rpc.Sent[0])
	assert.Equal(t, common.MetaplexTokenMetaProgramID, program)
	program, data := programOf(t, f.rpc.Sent[1])
	assert.Equal(t, common.TokenProgramID, program)
	assert.Equal(t, byte(6), data[0], "SetAuthority")

	assert.Equal(t, []string{
		metadata.StepWaitMint,
		metadata.StepPinImage,
		metadata.StepValidateImage,
		metadata.StepPinMetadata,
		metadata.StepValidateMetadata,
		metadata.StepCreateMetadata,
		metadata.StepRevokeMint,
	}, f.steps)

	doc, ok := f.pinner.docs[0].(domain.MetadataDocument)
	require.True(t, ok)
	assert.Equal(t, f.payer.PublicKey.ToBase58(), doc.Properties.Creators[0].Address)
}

func TestPipeline_NoRevokeWithoutFlag(t *testing.T) {
	f := newFixture(t, time.Second)
	f.rpc.AddAccount(f.mint, &solana.AccountInfo{Owner: solana.TokenProgramID})
	p := dogeParams()
	p.RevokeMint = false
	p.Image = nil

	out, err := f.pipeline.Run(context.Background(), p, f.wallet, f.mint)
	require.NoError(t, err)

	assert.Empty(t, out.RevokeSignature)
	assert.Empty(t, out.ImageURL)
	assert.Equal(t, []string{"SDOGE_metadata"}, f.pinner.names)
	assert.Equal(t, 1, f.rpc.SentCount())
}

func TestPipeline_PinFailureStopsRun(t *testing.T) {
	f := newFixture(t, time.Second)
	f.rpc.AddAccount(f.mint, &solana.AccountInfo{Owner: solana.TokenProgramID})
	pinErr := errors.New("pinata: status 401")
	f.pinner.fileErr = pinErr

	out, err := f.pipeline.Run(context.Background(), dogeParams(), f.wallet, f.mint)

	require.Error(t, err)
	assert.Equal(t, apperr.KindMetadata, apperr.KindOf(err))
	assert.ErrorIs(t, err, pinErr)
	assert.Empty(t, out.URI)
	assert.Zero(t, f.rpc.SentCount())
}

func TestPipeline_MintNeverAppears(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)

	_, err := f.pipeline.Run(context.Background(), dogeParams(), f.wallet, f.mint)

	require.Error(t, err)
	assert.Equal(t, apperr.KindMetadata, apperr.KindOf(err))
	assert.ErrorIs(t, err, apperr.New(apperr.KindTimeout, "", ""))
	assert.Empty(t, f.pinner.names)
}

func TestPipeline_StrictValidationFailure(t *testing.T) {
	f := newFixture(t, time.Second)
	f.rpc.AddAccount(f.mint, &solana.AccountInfo{Owner: solana.TokenProgramID})
	f.validator.metaErr = pinning.ErrMetadataNotServed

	out, err := f.pipeline.Run(context.Background(), dogeParams(), f.wallet, f.mint)

	assert.ErrorIs(t, err, pinning.ErrMetadataNotServed)
	assert.NotEmpty(t, out.URI)
	assert.Zero(t, f.rpc.SentCount(), "no on-chain metadata without validated document")
}

func TestPipeline_OnChainFailureKeepsRevokePending(t *testing.T) {
	f := newFixture(t, time.Second)
	f.rpc.AddAccount(f.mint, &solana.AccountInfo{Owner: solana.TokenProgramID})
	f.rpc.FailSignatures[1] = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}

	out, err := f.pipeline.Run(context.Background(), dogeParams(), f.wallet, f.mint)

	require.Error(t, err)
	assert.Equal(t, apperr.KindMetadata, apperr.KindOf(err))
	assert.Empty(t, out.RevokeSignature)
	assert.Equal(t, 1, f.rpc.SentCount(), "revoke is not attempted after a failed metadata transaction")
}
