package holdings

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daio-rewards/internal/solana"
	"daio-rewards/internal/solana/stub"
)

const (
	wallet      = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	issuerMint  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	foreignMint = "So11111111111111111111111111111111111111112"
	foreignAuth = "11111111111111111111111111111111"
)

var now = time.Date(2025, 1, 3, 17, 17, 1, 0, time.UTC)

func key(b byte) string {
	k := make([]byte, 32)
	k[31] = b
	return base58.Encode(k)
}

func unix(t time.Time) *int64 {
	v := t.Unix()
	return &v
}

func newLookup(rpc solana.RPCClient, pageLimit int) *Lookup {
	return NewLookup(rpc, Config{
		IssuerAddress: DefaultIssuer,
		PageLimit:     pageLimit,
		MaxPages:      5,
		Now:           func() time.Time { return now },
		Logger:        log.New(io.Discard, "", 0),
	})
}

func TestLookup_IssuerHolding(t *testing.T) {
	rpc := stub.NewRPCClient()
	acct := key(1)
	rpc.AddTokenAccount(wallet, acct, issuerMint)
	rpc.AddMint(issuerMint, DefaultIssuer)

	acquired := now.Add(-400 * 24 * time.Hour)
	rpc.AddSignatures(acct, []solana.SignatureInfo{
		{Signature: "newest", Slot: 300, BlockTime: unix(now.Add(-time.Hour))},
		{Signature: "oldest", Slot: 100, BlockTime: unix(acquired)},
	})

	report, err := newLookup(rpc, 0).Lookup(context.Background(), wallet)
	require.NoError(t, err)
	require.Len(t, report.Holdings, 1)

	h := report.Holdings[0]
	assert.Equal(t, acct, h.TokenAccount)
	assert.Equal(t, issuerMint, h.MintAddress)
	assert.Equal(t, 400, h.HoldingDurationDays)
	assert.True(t, h.AcquisitionDate.Equal(acquired))
	assert.False(t, h.Associated)
	assert.Equal(t, wallet, report.WalletAddress)
	assert.Equal(t, now, report.CheckedAt)
}

func TestLookup_SkipsForeignMints(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddTokenAccount(wallet, key(1), foreignMint)
	rpc.AddMint(foreignMint, foreignAuth)
	rpc.AddTokenAccount(wallet, key(2), key(9))
	// key(9) mint account missing entirely.

	report, err := newLookup(rpc, 0).Lookup(context.Background(), wallet)
	require.NoError(t, err)
	assert.Empty(t, report.Holdings)
}

func TestLookup_MintCheckedOnce(t *testing.T) {
	rpc := stub.NewRPCClient()
	for i := byte(1); i <= 3; i++ {
		acct := key(i)
		rpc.AddTokenAccount(wallet, acct, issuerMint)
		rpc.AddSignatures(acct, []solana.SignatureInfo{
			{Signature: "s" + acct, Slot: 10, BlockTime: unix(now.Add(-24 * time.Hour))},
		})
	}
	rpc.AddMint(issuerMint, DefaultIssuer)

	report, err := newLookup(rpc, 0).Lookup(context.Background(), wallet)
	require.NoError(t, err)
	assert.Len(t, report.Holdings, 3)
	assert.Equal(t, 1, rpc.CallCount("getAccountInfo"))
}

func TestLookup_NoTokenAccounts(t *testing.T) {
	_, err := newLookup(stub.NewRPCClient(), 0).Lookup(context.Background(), wallet)
	assert.True(t, errors.Is(err, ErrNoTokenAccounts))
}

func TestLookup_ExternalFailure(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Fail["getTokenAccountsByOwner"] = errors.New("connection refused")

	_, err := newLookup(rpc, 0).Lookup(context.Background(), wallet)
	require.Error(t, err)

	var extErr *ExternalServiceError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "getTokenAccountsByOwner", extErr.Op)
}

func TestLookup_SignatureFailureIsExternal(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddTokenAccount(wallet, key(1), issuerMint)
	rpc.AddMint(issuerMint, DefaultIssuer)
	rpc.Fail["getSignaturesForAddress"] = errors.New("timeout")

	_, err := newLookup(rpc, 0).Lookup(context.Background(), wallet)
	var extErr *ExternalServiceError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "getSignaturesForAddress", extErr.Op)
}

func TestLookup_PagesToEarliestSignature(t *testing.T) {
	rpc := stub.NewRPCClient()
	acct := key(1)
	rpc.AddTokenAccount(wallet, acct, issuerMint)
	rpc.AddMint(issuerMint, DefaultIssuer)

	var sigs []solana.SignatureInfo
	for i := 0; i < 7; i++ {
		sigs = append(sigs, solana.SignatureInfo{
			Signature: key(byte(100 + i)),
			Slot:      int64(1000 - i),
			BlockTime: unix(now.Add(-time.Duration(i*30) * 24 * time.Hour)),
		})
	}
	rpc.AddSignatures(acct, sigs)

	report, err := newLookup(rpc, 3).Lookup(context.Background(), wallet)
	require.NoError(t, err)
	require.Len(t, report.Holdings, 1)
	assert.Equal(t, 180, report.Holdings[0].HoldingDurationDays)
	assert.Equal(t, 3, rpc.CallCount("getSignaturesForAddress"))
}

func TestLookup_BlockTimeFallback(t *testing.T) {
	rpc := stub.NewRPCClient()
	acct := key(1)
	rpc.AddTokenAccount(wallet, acct, issuerMint)
	rpc.AddMint(issuerMint, DefaultIssuer)
	rpc.AddSignatures(acct, []solana.SignatureInfo{{Signature: "only", Slot: 77}})
	rpc.BlockTimes[77] = now.Add(-95 * 24 * time.Hour).Unix()

	report, err := newLookup(rpc, 0).Lookup(context.Background(), wallet)
	require.NoError(t, err)
	require.Len(t, report.Holdings, 1)
	assert.Equal(t, 95, report.Holdings[0].HoldingDurationDays)
}

func TestLookup_NoHistorySkipsAccount(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.AddTokenAccount(wallet, key(1), issuerMint)
	rpc.AddMint(issuerMint, DefaultIssuer)

	report, err := newLookup(rpc, 0).Lookup(context.Background(), wallet)
	require.NoError(t, err)
	assert.Empty(t, report.Holdings)
}

func TestLookup_AssociatedAccount(t *testing.T) {
	ata, err := solana.FindAssociatedTokenAddress(wallet, issuerMint)
	require.NoError(t, err)

	rpc := stub.NewRPCClient()
	rpc.AddTokenAccount(wallet, ata, issuerMint)
	rpc.AddMint(issuerMint, DefaultIssuer)
	rpc.AddSignatures(ata, []solana.SignatureInfo{{Signature: "s", BlockTime: unix(now)}})

	report, err := newLookup(rpc, 0).Lookup(context.Background(), wallet)
	require.NoError(t, err)
	require.Len(t, report.Holdings, 1)
	assert.True(t, report.Holdings[0].Associated)
	assert.Equal(t, 0, report.Holdings[0].HoldingDurationDays)
}

func TestDurationDays(t *testing.T) {
	assert.Equal(t, 0, DurationDays(now.Add(time.Hour), now))
	assert.Equal(t, 0, DurationDays(now.Add(-23*time.Hour), now))
	assert.Equal(t, 1, DurationDays(now.Add(-24*time.Hour), now))
	assert.Equal(t, 365, DurationDays(now.Add(-365*24*time.Hour-time.Minute), now))
}
