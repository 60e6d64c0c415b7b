// nanokit-cli is a command-line wallet for a nano node.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/nanokit/nanokit/config"
	"github.com/nanokit/nanokit/internal/log"
	"github.com/nanokit/nanokit/pkg/account"
	"github.com/nanokit/nanokit/pkg/ledger"
	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
	"github.com/nanokit/nanokit/pkg/wallet"
)

// seedEnvVar lets scripts provide the seed without a prompt.
const seedEnvVar = "NANOKIT_SEED"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	configFile := config.DefaultConfigFile()
	nodeURL := ""
	prefix := ""
	index := uint(0)

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--config" && len(args) > 1:
			configFile = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--config="):
			configFile = args[0][len("--config="):]
			args = args[1:]
		case args[0] == "--node" && len(args) > 1:
			nodeURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--node="):
			nodeURL = args[0][len("--node="):]
			args = args[1:]
		case args[0] == "--prefix" && len(args) > 1:
			prefix = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--prefix="):
			prefix = args[0][len("--prefix="):]
			args = args[1:]
		case args[0] == "--index" && len(args) > 1:
			fmt.Sscanf(args[1], "%d", &index)
			args = args[2:]
		case strings.HasPrefix(args[0], "--index="):
			fmt.Sscanf(args[0][len("--index="):], "%d", &index)
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	cfg := config.Default()
	values, err := config.LoadFile(configFile)
	if err != nil {
		fatal("load config %s: %v", configFile, err)
	}
	if err := config.ApplyFileConfig(cfg, values); err != nil {
		fatal("apply config: %v", err)
	}
	if nodeURL != "" {
		cfg.Node.URL = nodeURL
	}
	if prefix != "" {
		cfg.Wallet.AddressPrefix = prefix
	}
	if err := cfg.Validate(); err != nil {
		fatal("config: %v", err)
	}
	types.SetAddressPrefix(cfg.Wallet.AddressPrefix)
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	env := &cliEnv{cfg: cfg, index: uint32(index)}
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "seed":
		cmdSeed(cmdArgs)
	case "address":
		cmdAddress(env)
	case "balance":
		cmdBalance(env, cmdArgs)
	case "receivables":
		cmdReceivables(env, cmdArgs)
	case "send":
		cmdSend(env, cmdArgs)
	case "receive-all":
		cmdReceiveAll(env, cmdArgs)
	case "change-rep":
		cmdChangeRep(env, cmdArgs)
	case "sweep":
		cmdSweep(env, cmdArgs)
	case "refund":
		cmdRefund(env, cmdArgs)
	case "refund-first-sender":
		cmdRefundFirstSender(env)
	case "history":
		cmdHistory(env, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: nanokit-cli [global flags] <command> [flags]

Global flags:
  --config <path>     Config file (default: %s)
  --node <url>        Node RPC endpoint (default: http://localhost:7076)
  --prefix <p>        Address prefix, nano_ (default) or xrb_
  --index <n>         Account index derived from the seed (default: 0)

Commands:
  seed new                        Generate a seed and its mnemonic
  seed from-mnemonic              Recover a seed from a mnemonic
  address                         Show the account address for the seed
  balance [account]               Show balance and receivable totals
  receivables [account]           List receivable blocks
  send --to <addr> --amount <amt> [--raw] [--no-wait] [--no-retry]
                                  Send funds
  receive-all [--threshold <raw>] [--no-wait]
                                  Receive every pending receivable
  change-rep --to <addr>          Change the representative
  sweep --to <addr> [--receive-first]
                                  Send the entire balance
  refund <hash> | refund --all    Send receivable(s) back to their source
  refund-first-sender             Return all holdings to the first funder
  history [account] [--count <n>]
                                  Show past transactions

The account seed is read from $%s or prompted for without echo.
`, config.DefaultConfigFile(), seedEnvVar)
}

// cliEnv carries the configuration shared by every subcommand.
type cliEnv struct {
	cfg   *config.Config
	index uint32
}

func (e *cliEnv) client() *ledger.Client {
	c := ledger.NewWithTimeout(e.cfg.Node.URL, e.cfg.Node.Timeout)
	if e.cfg.Node.Username != "" {
		c.SetBasicAuth(e.cfg.Node.Username, e.cfg.Node.Password)
	}
	return c
}

func (e *cliEnv) walletSettings() wallet.Config {
	settings, err := e.cfg.WalletSettings()
	if err != nil {
		fatal("config: %v", err)
	}
	return settings
}

// signingWallet builds a wallet from the seed in the environment or an
// interactive prompt.
func (e *cliEnv) signingWallet() *wallet.Wallet {
	seed := readSeed()
	key, err := account.KeyFromSeed(seed, e.index)
	if err != nil {
		fatal("derive key: %v", err)
	}
	return wallet.New(e.client(), key, wallet.WithConfig(e.walletSettings()))
}

// readOnlyWallet builds a wallet for any account address.
func (e *cliEnv) readOnlyWallet(addr string) *wallet.Wallet {
	acct, err := types.ParseAddress(addr)
	if err != nil {
		fatal("invalid account: %v", err)
	}
	return wallet.NewReadOnly(e.client(), acct, wallet.WithConfig(e.walletSettings()))
}

// ── seed ────────────────────────────────────────────────────────────────

func cmdSeed(args []string) {
	if len(args) < 1 {
		fatal("Usage: nanokit-cli seed <new|from-mnemonic>")
	}
	switch args[0] {
	case "new":
		seed, err := account.GenerateSeed()
		if err != nil {
			fatal("generate seed: %v", err)
		}
		mnemonic, err := account.MnemonicFromSeed(seed)
		if err != nil {
			fatal("derive mnemonic: %v", err)
		}
		key, err := account.KeyFromSeed(seed, 0)
		if err != nil {
			fatal("derive key: %v", err)
		}
		seedHex, err := account.SeedToHex(seed)
		if err != nil {
			fatal("encode seed: %v", err)
		}
		fmt.Printf("Seed:     %s\n", seedHex)
		fmt.Printf("Mnemonic: %s\n", mnemonic)
		fmt.Printf("Account:  %s\n", key.Address())
		fmt.Fprintln(os.Stderr, "\nStore the seed and mnemonic somewhere safe. Anyone holding them controls the funds.")
	case "from-mnemonic":
		fmt.Fprint(os.Stderr, "Enter mnemonic: ")
		reader := bufioLine()
		mnemonic := strings.TrimSpace(reader)
		seed, err := account.SeedFromMnemonic(mnemonic)
		if err != nil {
			fatal("invalid mnemonic: %v", err)
		}
		key, err := account.KeyFromSeed(seed, 0)
		if err != nil {
			fatal("derive key: %v", err)
		}
		seedHex, err := account.SeedToHex(seed)
		if err != nil {
			fatal("encode seed: %v", err)
		}
		fmt.Printf("Seed:    %s\n", seedHex)
		fmt.Printf("Account: %s\n", key.Address())
	default:
		fatal("Usage: nanokit-cli seed <new|from-mnemonic>")
	}
}

// ── address ─────────────────────────────────────────────────────────────

func cmdAddress(env *cliEnv) {
	seed := readSeed()
	key, err := account.KeyFromSeed(seed, env.index)
	if err != nil {
		fatal("derive key: %v", err)
	}
	fmt.Println(key.Address())
}

// ── balance ─────────────────────────────────────────────────────────────

func cmdBalance(env *cliEnv, args []string) {
	var w *wallet.Wallet
	if len(args) > 0 {
		w = env.readOnlyWallet(args[0])
	} else {
		w = env.signingWallet()
	}
	snap, err := w.Reconcile(context.Background())
	if err != nil {
		fatal("reconcile: %v", err)
	}
	balance := snap.State.Balance.ToNano(6)
	receivable := snap.State.Receivable.ToNano(6)
	fmt.Printf("Account:    %s\n", w.Account())
	fmt.Printf("Balance:    %s (%s raw)\n", balance, snap.State.Balance)
	fmt.Printf("Receivable: %s (%s raw)\n", receivable, snap.State.Receivable)
	if snap.State.Opened {
		fmt.Printf("Blocks:     %d\n", snap.State.BlockCount)
		fmt.Printf("Frontier:   %s\n", snap.State.Frontier)
	} else {
		fmt.Printf("Blocks:     0 (account not yet opened)\n")
	}
}

// ── receivables ─────────────────────────────────────────────────────────

func cmdReceivables(env *cliEnv, args []string) {
	var w *wallet.Wallet
	if len(args) > 0 {
		w = env.readOnlyWallet(args[0])
	} else {
		w = env.signingWallet()
	}
	entries, err := w.ListReceivables(context.Background(), raw.Amount{})
	if err != nil {
		fatal("list receivables: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("No receivables.")
		return
	}
	for _, e := range entries {
		amount := e.Amount.ToNano(6)
		fmt.Printf("%s  %s (%s raw)  from %s\n", e.BlockHash, amount, e.Amount, e.Source)
	}
}

// ── send ────────────────────────────────────────────────────────────────

func cmdSend(env *cliEnv, args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	toAddr := fs.String("to", "", "Recipient account")
	amountStr := fs.String("amount", "", "Amount to send (e.g. 1.5)")
	isRaw := fs.Bool("raw", false, "Treat the amount as raw units")
	noWait := fs.Bool("no-wait", false, "Do not wait for confirmation")
	noRetry := fs.Bool("no-retry", false, "Do not retry on stale-frontier rejections")
	fs.Parse(args)

	if *toAddr == "" || *amountStr == "" {
		fatal("Usage: nanokit-cli send --to <addr> --amount <amt> [--raw] [--no-wait] [--no-retry]")
	}
	dest, err := types.ParseAddress(*toAddr)
	if err != nil {
		fatal("invalid recipient account: %v", err)
	}

	w := env.signingWallet()
	opts := wallet.SendOptions{WaitConfirmation: !*noWait}
	ctx := context.Background()

	var hash types.Hash
	switch {
	case *isRaw:
		amount, err := raw.FromRaw(*amountStr)
		if err != nil {
			fatal("invalid amount: %v", err)
		}
		if *noRetry {
			hash, err = w.SendRaw(ctx, dest, amount, opts)
		} else {
			hash, err = w.SendRawWithRetry(ctx, dest, amount, opts)
		}
		if err != nil {
			fatal("send: %v", err)
		}
	case *noRetry:
		hash, err = w.Send(ctx, dest, *amountStr, opts)
		if err != nil {
			fatal("send: %v", err)
		}
	default:
		hash, err = w.SendWithRetry(ctx, dest, *amountStr, opts)
		if err != nil {
			fatal("send: %v", err)
		}
	}
	fmt.Printf("Submitted: %s\n", hash)
}

// ── receive-all ─────────────────────────────────────────────────────────

func cmdReceiveAll(env *cliEnv, args []string) {
	fs := flag.NewFlagSet("receive-all", flag.ExitOnError)
	thresholdStr := fs.String("threshold", "", "Minimum receivable amount in raw")
	noWait := fs.Bool("no-wait", false, "Do not wait for confirmations")
	fs.Parse(args)

	threshold := raw.Amount{}
	if *thresholdStr != "" {
		var err error
		threshold, err = raw.FromRaw(*thresholdStr)
		if err != nil {
			fatal("invalid threshold: %v", err)
		}
	}

	w := env.signingWallet()
	received, err := w.ReceiveAll(context.Background(), threshold, wallet.SendOptions{WaitConfirmation: !*noWait})
	for _, r := range received {
		amount := r.Amount.ToNano(6)
		fmt.Printf("Received %s (%s raw) from %s: %s\n", amount, r.Amount, r.Source, r.BlockHash)
	}
	if err != nil {
		fatal("receive-all: %v", err)
	}
	if len(received) == 0 {
		fmt.Println("Nothing to receive.")
	}
}

// ── change-rep ──────────────────────────────────────────────────────────

func cmdChangeRep(env *cliEnv, args []string) {
	fs := flag.NewFlagSet("change-rep", flag.ExitOnError)
	toAddr := fs.String("to", "", "New representative account")
	fs.Parse(args)

	if *toAddr == "" {
		fatal("Usage: nanokit-cli change-rep --to <addr>")
	}
	rep, err := types.ParseAddress(*toAddr)
	if err != nil {
		fatal("invalid representative account: %v", err)
	}

	w := env.signingWallet()
	hash, err := w.ChangeRepresentative(context.Background(), rep, wallet.SendOptions{WaitConfirmation: true})
	if err != nil {
		fatal("change-rep: %v", err)
	}
	fmt.Printf("Submitted: %s\n", hash)
}

// ── sweep ───────────────────────────────────────────────────────────────

func cmdSweep(env *cliEnv, args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	toAddr := fs.String("to", "", "Destination account")
	receiveFirst := fs.Bool("receive-first", false, "Drain receivables before sweeping")
	fs.Parse(args)

	if *toAddr == "" {
		fatal("Usage: nanokit-cli sweep --to <addr> [--receive-first]")
	}
	dest, err := types.ParseAddress(*toAddr)
	if err != nil {
		fatal("invalid destination account: %v", err)
	}

	w := env.signingWallet()
	hash, err := w.Sweep(context.Background(), dest, *receiveFirst, wallet.SendOptions{WaitConfirmation: true})
	if err != nil {
		fatal("sweep: %v", err)
	}
	fmt.Printf("Submitted: %s\n", hash)
}

// ── refund ──────────────────────────────────────────────────────────────

func cmdRefund(env *cliEnv, args []string) {
	fs := flag.NewFlagSet("refund", flag.ExitOnError)
	all := fs.Bool("all", false, "Refund every receivable")
	fs.Parse(args)

	w := env.signingWallet()
	ctx := context.Background()
	opts := wallet.SendOptions{WaitConfirmation: true}

	if *all {
		outcomes, err := w.RefundAllReceivables(ctx, raw.Amount{}, opts)
		if err != nil {
			fatal("refund: %v", err)
		}
		if len(outcomes) == 0 {
			fmt.Println("Nothing to refund.")
			return
		}
		for _, o := range outcomes {
			printRefundOutcome(o)
		}
		return
	}

	if fs.NArg() < 1 {
		fatal("Usage: nanokit-cli refund <hash> | refund --all")
	}
	hash, err := types.HexToHash(fs.Arg(0))
	if err != nil {
		fatal("invalid block hash: %v", err)
	}
	printRefundOutcome(w.RefundReceivable(ctx, hash, opts))
}

func printRefundOutcome(o wallet.RefundOutcome) {
	switch o.Status {
	case wallet.RefundSuccess:
		amount := o.Amount.ToNano(6)
		fmt.Printf("%s  %s: returned %s to %s (%s)\n", o.ReceivableHash, o.Status, amount, o.Source, o.RefundHash)
	default:
		fmt.Printf("%s  %s: %s\n", o.ReceivableHash, o.Status, o.ErrorMessage)
	}
}

// ── refund-first-sender ─────────────────────────────────────────────────

func cmdRefundFirstSender(env *cliEnv) {
	w := env.signingWallet()
	hash, err := w.RefundFirstSender(context.Background(), wallet.SendOptions{WaitConfirmation: true})
	if err != nil {
		fatal("refund-first-sender: %v", err)
	}
	fmt.Printf("Submitted: %s\n", hash)
}

// ── history ─────────────────────────────────────────────────────────────

func cmdHistory(env *cliEnv, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	count := fs.Int("count", 20, "Number of entries (-1 for all)")

	// An account argument may precede the flags.
	acctArg := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		acctArg = args[0]
		args = args[1:]
	}
	fs.Parse(args)

	var w *wallet.Wallet
	if acctArg != "" {
		w = env.readOnlyWallet(acctArg)
	} else {
		w = env.signingWallet()
	}

	txs, err := w.History(context.Background(), *count, types.Hash{})
	if err != nil {
		fatal("history: %v", err)
	}
	if len(txs) == 0 {
		fmt.Println("No transactions.")
		return
	}
	for _, tx := range txs {
		amount := tx.Amount.ToNano(6)
		fmt.Printf("%s  %-8s %12s  height %d\n", tx.BlockHash, tx.Subtype, amount, tx.Height)
	}
}

// ── Seed helpers ────────────────────────────────────────────────────────

// readSeed returns the wallet seed from the environment or an interactive
// prompt with echo disabled.
func readSeed() []byte {
	if env := os.Getenv(seedEnvVar); env != "" {
		seed, err := account.SeedFromHex(env)
		if err != nil {
			fatal("$%s: %v", seedEnvVar, err)
		}
		return seed
	}
	fmt.Fprint(os.Stderr, "Enter seed (hex): ")
	line, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		fatal("read seed: %v", err)
	}
	seed, err := account.SeedFromHex(strings.TrimSpace(string(line)))
	if err != nil {
		fatal("invalid seed: %v", err)
	}
	return seed
}

// bufioLine reads one line from stdin.
func bufioLine() string {
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return line
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
