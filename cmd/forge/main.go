// Command forge creates SPL tokens from the command line.
//
//	forge create  --name "Solana Doge" --symbol SDOGE --supply 1000000000 --revoke-mint
//	forge fee     --revoke-mint --social twitter=https://x.com/sdoge
//	forge list    --format md
//	forge airdrop --amount 1
//	forge wallets
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/shopspring/decimal"

	"token-forge/internal/app"
	"token-forge/internal/config"
	"token-forge/internal/creator"
	"token-forge/internal/fees"
	"token-forge/internal/logger"
	"token-forge/internal/reporting"
)

const usage = `usage: forge <command> [flags]

commands:
  create    create a token
  fee       show the fee for a token without creating it
  list      show created coins
  airdrop   request devnet SOL for the wallet
  wallets   list registered wallets
`

func main() {
	if err := config.LoadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		// A started creation run finishes; a second interrupt kills the process.
		stop()
	}()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "create":
		err = runCreate(ctx, args)
	case "fee":
		err = runFee(ctx, args)
	case "list":
		err = runList(ctx, args)
	case "airdrop":
		err = runAirdrop(ctx, args)
	case "wallets":
		err = runWallets(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// common holds the flags every command accepts. Defaults come from the environment.
type common struct {
	cfg      *config.Config
	walletID string
}

func newCommon(fs *flag.FlagSet) (*common, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	c := &common{cfg: cfg}
	fs.StringVar(&cfg.Cluster, "cluster", cfg.Cluster, "Solana cluster (devnet, testnet, mainnet-beta)")
	fs.StringVar(&cfg.RPCEndpoint, "rpc-endpoint", cfg.RPCEndpoint, "Solana RPC HTTP endpoint (default: public cluster endpoint)")
	fs.StringVar(&cfg.WSEndpoint, "ws-endpoint", cfg.WSEndpoint, "Solana WebSocket endpoint")
	fs.StringVar(&cfg.WalletKeypair, "keypair", cfg.WalletKeypair, "Path to a Solana CLI keypair file")
	fs.StringVar(&c.walletID, "wallet", "", "Use this wallet instead of the first connected one")
	fs.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "Created coins store (file, sqlite, memory)")
	fs.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "Path of the file or sqlite store")
	fs.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "Mirror created coins to PostgreSQL")
	fs.StringVar(&cfg.ClickhouseDSN, "clickhouse-dsn", cfg.ClickhouseDSN, "Mirror created coins to ClickHouse")
	fs.StringVar(&cfg.LogEnv, "log-env", cfg.LogEnv, "Log format (development, production)")
	return c, nil
}

func (c *common) build(ctx context.Context, opts app.Options) (*app.App, error) {
	log, err := logger.New(c.cfg.LogEnv)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	opts.WalletID = c.walletID
	return app.New(ctx, c.cfg, log, opts)
}

func runCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	c, err := newCommon(fs)
	if err != nil {
		return err
	}
	pf := addParamsFlags(fs)
	yes := fs.Bool("yes", false, "Sign without asking for confirmation")
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	fs.Parse(args)

	params, err := pf.params()
	if err != nil {
		return err
	}

	opts := app.Options{Notifier: printNotifier()}
	if !*yes {
		opts.Approval = promptApproval
	}
	a, err := c.build(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.Logger.Sync()

	res := a.Creator.Create(ctx, params)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		fmt.Println()
		fmt.Printf("Run:       %s\n", res.RunID)
		fmt.Printf("Fee:       %s SOL\n", res.FeeSOL)
		if res.MintAddress != "" {
			fmt.Printf("Mint:      %s\n", res.MintAddress)
			fmt.Printf("Explorer:  %s\n", a.Cluster.ExplorerAddressURL(res.MintAddress))
			fmt.Printf("Tx:        %s\n", a.Cluster.ExplorerTxURL(res.MintSignature))
		}
		if res.HasMetadata {
			fmt.Printf("Metadata:  %s (%s)\n", res.MetadataURI, res.MetadataValidation)
		}
	}
	if !res.Success {
		return res.Error
	}
	return nil
}

func runFee(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fee", flag.ExitOnError)
	c, err := newCommon(fs)
	if err != nil {
		return err
	}
	pf := addParamsFlags(fs)
	fs.Parse(args)

	params, err := pf.paramsForQuote()
	if err != nil {
		return err
	}
	c.cfg.StoreBackend = "memory"
	a, err := c.build(ctx, app.Options{NoWebSocket: true})
	if err != nil {
		return err
	}
	defer a.Close()

	lines := a.Creator.Quote(params)
	total := fees.Calculate(a.Builder.Schedule(), params)
	quote := a.Price.SOLPriceUSD(ctx)

	for _, l := range lines {
		fmt.Printf("  %-26s %s SOL\n", l.Label, l.Amount.StringFixed(2))
	}
	fmt.Printf("  %-26s %s SOL\n", "Total", total.StringFixed(2))
	note := ""
	if quote.FromFallback {
		note = " (estimated price)"
	}
	fmt.Printf("  %-26s $%s%s\n", "Total (USD)", quote.Convert(total).StringFixed(2), note)
	return nil
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	c, err := newCommon(fs)
	if err != nil {
		return err
	}
	format := fs.String("format", "md", "Output format (md, csv, json)")
	fs.Parse(args)

	a, err := c.build(ctx, app.Options{NoWebSocket: true})
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.Store.List(ctx)
	if err != nil {
		return err
	}
	report := reporting.Build(records, a.Cluster, nowUTC())

	switch *format {
	case "md", "markdown":
		fmt.Print(reporting.RenderMarkdown(report))
	case "csv":
		out, err := reporting.RenderCSV(report)
		if err != nil {
			return err
		}
		fmt.Print(out)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	return nil
}

func runAirdrop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("airdrop", flag.ExitOnError)
	c, err := newCommon(fs)
	if err != nil {
		return err
	}
	amount := fs.String("amount", "1", "Amount in SOL")
	address := fs.String("address", "", "Recipient (default: the wallet)")
	fs.Parse(args)

	sol, err := decimal.NewFromString(*amount)
	if err != nil || !sol.IsPositive() {
		return fmt.Errorf("invalid amount %q", *amount)
	}
	c.cfg.StoreBackend = "memory"
	a, err := c.build(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	to := *address
	if to == "" {
		if to, err = a.Payer(); err != nil {
			return err
		}
	}
	sig, err := a.Airdropper.Request(ctx, to, fees.ToLamports(sol))
	if err != nil {
		return fmt.Errorf("airdrop failed: %w", err)
	}
	fmt.Printf("Airdrop successful: %s SOL to %s\n", sol.String(), to)
	fmt.Println(a.Cluster.ExplorerTxURL(sig))
	return nil
}

func runWallets(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("wallets", flag.ExitOnError)
	c, err := newCommon(fs)
	if err != nil {
		return err
	}
	fs.Parse(args)

	c.cfg.StoreBackend = "memory"
	a, err := c.build(ctx, app.Options{NoWebSocket: true})
	if err != nil {
		return err
	}
	defer a.Close()

	ids := a.Wallets.Detect()
	if len(ids) == 0 {
		fmt.Println("No wallets registered. Set WALLET_KEYPAIR or pass --keypair.")
		return nil
	}
	resolved, _ := a.Wallets.Resolve()
	for _, id := range ids {
		p, _ := a.Wallets.Get(id)
		marker := " "
		if resolved != nil && resolved.ID() == id {
			marker = "*"
		}
		addr := "-"
		if pk, ok := p.PublicKey(); ok {
			addr = pk.ToBase58()
		}
		balance := ""
		if addr != "-" {
			if lamports, err := a.RPC.GetBalance(ctx, addr); err == nil {
				balance = fees.FromLamports(lamports).StringFixed(4) + " SOL"
			}
		}
		fmt.Printf("%s %-10s %-44s %s\n", marker, id, addr, balance)
	}
	return nil
}

func printNotifier() creator.Notifier {
	return creator.NotifierFunc(func(n creator.Notification) {
		fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", strings.ToUpper(string(n.Level)), n.Title, n.Description)
	})
}

// promptApproval asks on the terminal before the wallet signs.
func promptApproval(ctx context.Context, tx types.Transaction) (bool, error) {
	fmt.Fprintf(os.Stderr, "Sign transaction with %d instruction(s)? [y/N] ", len(tx.Message.Instructions))

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer <- strings.TrimSpace(strings.ToLower(line))
	}()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-answer:
		return a == "y" || a == "yes", nil
	}
}
