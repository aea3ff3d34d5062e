// Package holdings resolves which issuer tokens a wallet holds and for how long.
package holdings

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"daio-rewards/internal/domain"
	"daio-rewards/internal/solana"
)

// DefaultIssuer is the authority whose mints qualify for rewards.
const DefaultIssuer = "GF6AF7pJZnKNeZvLQ8Jwx7j2uSWSNRZMgan3BCbHbVSr"

// Defaults for signature history paging.
const (
	DefaultPageLimit = 1000
	DefaultMaxPages  = 10
)

// Config configures Lookup.
type Config struct {
	IssuerAddress  string
	TokenProgramID string
	PageLimit      int
	MaxPages       int
	Now            func() time.Time
	Logger         *log.Logger
	Tracer         trace.Tracer
}

// Lookup finds issuer holdings for wallets.
type Lookup struct {
	rpc    solana.RPCClient
	cfg    Config
	logger *log.Logger
	tracer trace.Tracer
}

// NewLookup creates a Lookup. Zero config fields take defaults.
func NewLookup(rpc solana.RPCClient, cfg Config) *Lookup {
	if cfg.IssuerAddress == "" {
		cfg.IssuerAddress = DefaultIssuer
	}
	if cfg.TokenProgramID == "" {
		cfg.TokenProgramID = solana.TokenProgramID
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[holdings] ", log.LstdFlags)
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("daio-rewards/holdings")
	}
	return &Lookup{rpc: rpc, cfg: cfg, logger: logger, tracer: tracer}
}

// Lookup returns the wallet's holdings of tokens minted by the issuer.
// Returns ErrNoTokenAccounts if the wallet has no token accounts and an
// *ExternalServiceError if any RPC call fails.
func (l *Lookup) Lookup(ctx context.Context, wallet string) (*domain.HoldingReport, error) {
	ctx, span := l.tracer.Start(ctx, "holdings.Lookup",
		trace.WithAttributes(attribute.String("wallet", wallet)))
	defer span.End()

	report, err := l.lookup(ctx, wallet)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("holdings", len(report.Holdings)))
	return report, nil
}

func (l *Lookup) lookup(ctx context.Context, wallet string) (*domain.HoldingReport, error) {
	accounts, err := l.rpc.GetTokenAccountsByOwner(ctx, wallet, l.cfg.TokenProgramID)
	if err != nil {
		return nil, external("getTokenAccountsByOwner", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoTokenAccounts
	}

	now := l.cfg.Now()
	report := &domain.HoldingReport{WalletAddress: wallet, CheckedAt: now}
	issuerMints := make(map[string]bool)

	for _, acct := range accounts {
		mint, err := l.accountMint(ctx, acct)
		if err != nil {
			return nil, err
		}
		if mint == "" {
			continue
		}

		qualifies, ok := issuerMints[mint]
		if !ok {
			qualifies, err = l.issuedByIssuer(ctx, mint)
			if err != nil {
				return nil, err
			}
			issuerMints[mint] = qualifies
		}
		if !qualifies {
			continue
		}

		acquired, found, err := l.acquisitionTime(ctx, acct.Pubkey)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}

		report.Holdings = append(report.Holdings, domain.Holding{
			TokenAccount:        acct.Pubkey,
			MintAddress:         mint,
			HoldingDurationDays: DurationDays(acquired, now),
			AcquisitionDate:     acquired,
			Associated:          isAssociated(wallet, mint, acct.Pubkey),
		})
	}

	return report, nil
}

// accountMint returns the mint of a token account, re-fetching the account
// when the listing's data cannot be decoded. Empty means skip.
func (l *Lookup) accountMint(ctx context.Context, acct solana.TokenAccount) (string, error) {
	data, err := acct.Account.TokenAccount()
	if err == nil {
		return data.Mint, nil
	}

	info, err := l.rpc.GetAccountInfo(ctx, acct.Pubkey)
	if err != nil {
		return "", external("getAccountInfo", err)
	}
	if info == nil {
		return "", nil
	}
	data, err = info.TokenAccount()
	if err != nil {
		l.logger.Printf("skip token account %s: %v", acct.Pubkey, err)
		return "", nil
	}
	return data.Mint, nil
}

// issuedByIssuer reports whether the mint's authority, or the mint account's
// owner, is the configured issuer.
func (l *Lookup) issuedByIssuer(ctx context.Context, mint string) (bool, error) {
	info, err := l.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		return false, external("getAccountInfo", err)
	}
	if info == nil {
		return false, nil
	}
	if info.Owner == l.cfg.IssuerAddress {
		return true, nil
	}

	m, err := info.Mint()
	if err != nil {
		l.logger.Printf("skip mint %s: %v", mint, err)
		return false, nil
	}
	return m.MintAuthority == l.cfg.IssuerAddress, nil
}

// acquisitionTime returns the block time of the account's earliest transaction.
// found is false when the account has no history.
func (l *Lookup) acquisitionTime(ctx context.Context, account string) (time.Time, bool, error) {
	var earliest *solana.SignatureInfo
	before := ""

	for page := 0; page < l.cfg.MaxPages; page++ {
		sigs, err := l.rpc.GetSignaturesForAddress(ctx, account, &solana.SignaturesOpts{
			Before: before,
			Limit:  l.cfg.PageLimit,
		})
		if err != nil {
			return time.Time{}, false, external("getSignaturesForAddress", err)
		}
		if len(sigs) == 0 {
			break
		}

		last := sigs[len(sigs)-1]
		earliest = &last
		before = last.Signature

		if len(sigs) < l.cfg.PageLimit {
			break
		}
		if page == l.cfg.MaxPages-1 {
			l.logger.Printf("WARN: history of %s exceeds %d pages; using oldest signature seen", account, l.cfg.MaxPages)
		}
	}

	if earliest == nil {
		return time.Time{}, false, nil
	}

	if earliest.BlockTime != nil {
		return time.Unix(*earliest.BlockTime, 0).UTC(), true, nil
	}

	bt, err := l.rpc.GetBlockTime(ctx, earliest.Slot)
	if err != nil {
		return time.Time{}, false, external("getBlockTime", err)
	}
	if bt == nil {
		return time.Time{}, false, external("getBlockTime", fmt.Errorf("block time not available for slot %d", earliest.Slot))
	}
	return time.Unix(*bt, 0).UTC(), true, nil
}

// DurationDays returns the whole days between acquired and now, never negative.
func DurationDays(acquired, now time.Time) int {
	d := now.Sub(acquired)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

func isAssociated(wallet, mint, account string) bool {
	ata, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return false
	}
	return ata == account
}
