// Package terminal implements the Spark operator console: a line-oriented
// command interface over a snapshot of the economy state. Processing is
// pure; persistence of the history and any navigation side effect belong
// to the caller.
package terminal

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Output types.
const (
	TypeSuccess = "success"
	TypeError   = "error"
	TypeInfo    = "info"
	TypeWarning = "warning"
)

// WorldLine is the slice of world state the console renders.
type WorldLine struct {
	ID        string
	Title     string
	Description string
	Value     int64
	Tools     int
	Pages     int
	Owner     string
	Listed    bool
	SalePrice int64
	CreatedAt int64
}

// TokenLine is the slice of token state the console renders.
type TokenLine struct {
	ID    string
	Title string
	Value int64
}

// WalletLine is the slice of wallet state the console renders.
type WalletLine struct {
	Address  string
	Infinity int64
	Balance  int64
	Tokens   []TokenLine
}

// Snapshot is the read-only state a command executes against.
type Snapshot struct {
	Worlds []WorldLine
	Wallet *WalletLine // nil when no wallet exists yet
}

// Result is the outcome of one command.
type Result struct {
	Output   string
	Type     string
	Navigate string // target view when the command navigates, else empty
	Clear    bool   // true when the command wipes the history
}

var navTargets = []struct {
	aliases []string
	view    string
	label   string
}{
	{[]string{"hub", "navigate hub", "go hub"}, "builder", "Infinity Hub"},
	{[]string{"market", "marketplace", "navigate market"}, "marketplace", "Marketplace"},
	{[]string{"trade", "trading", "navigate trade"}, "trading", "Trading"},
	{[]string{"music", "navigate music"}, "music", "Music Hub"},
	{[]string{"dash", "dashboard", "navigate dash"}, "dashboard", "Spark Dashboard"},
	{[]string{"profile", "navigate profile"}, "profile", "Profile"},
	{[]string{"wallet", "navigate wallet"}, "wallet", "Wallet"},
}

// Process executes one console command against the snapshot.
func Process(input string, snap Snapshot) Result {
	cmd := strings.ToLower(strings.TrimSpace(input))
	parts := strings.Fields(cmd)
	if cmd == "" {
		return Result{Type: TypeInfo}
	}
	base := parts[0]

	switch {
	case cmd == "help" || cmd == "?":
		return Result{Output: helpText, Type: TypeInfo}
	case cmd == "clear":
		return Result{Type: TypeInfo, Clear: true}
	}

	for _, t := range navTargets {
		for _, a := range t.aliases {
			if cmd == a {
				return Result{
					Output:   fmt.Sprintf("→ Navigating to %s...", t.label),
					Type:     TypeSuccess,
					Navigate: t.view,
				}
			}
		}
	}
	if cmd == "home" || cmd == "back" || cmd == "exit" {
		return Result{Output: "→ Returning to entry...", Type: TypeSuccess, Navigate: "home"}
	}

	switch {
	case cmd == "ls" || cmd == "list":
		return listMine(snap)
	case cmd == "ls --all" || cmd == "list --all":
		return listAll(snap)
	case cmd == "top":
		return top(snap)
	case base == "show" && len(parts) > 1:
		return show(parts[1], snap)
	case cmd == "balance":
		return balance(snap)
	case cmd == "address":
		if snap.Wallet == nil {
			return Result{Output: "No wallet initialized.", Type: TypeWarning}
		}
		return Result{Output: "Wallet: " + snap.Wallet.Address, Type: TypeInfo}
	case cmd == "tokens":
		return tokens(snap)
	case cmd == "status":
		return status(snap)
	case cmd == "sparks":
		return Result{Output: sparksText, Type: TypeInfo}
	case cmd == "whoami":
		if snap.Wallet == nil {
			return Result{Output: "guest@infinity-spark", Type: TypeInfo}
		}
		return Result{Output: prefix(snap.Wallet.Address, 8) + "@infinity-spark", Type: TypeInfo}
	case cmd == "date" || cmd == "time":
		return Result{Output: time.Now().Format("1/2/2006, 3:04:05 PM"), Type: TypeInfo}
	case base == "echo":
		return Result{Output: strings.Join(parts[1:], " "), Type: TypeInfo}
	}

	return Result{
		Output: fmt.Sprintf("Command not found: %q. Type \"help\" for available commands.", base),
		Type:   TypeError,
	}
}

func listMine(snap Snapshot) Result {
	var addr string
	if snap.Wallet != nil {
		addr = snap.Wallet.Address
	}
	var mine []WorldLine
	for _, w := range snap.Worlds {
		if addr != "" && w.Owner == addr {
			mine = append(mine, w)
		}
	}
	if len(mine) == 0 {
		return Result{Output: "No worlds found. Create one from the Hub.", Type: TypeWarning}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "YOUR WORLDS (%d)\n%s\n", len(mine), rule(60))
	b.WriteString("  ID        TITLE                         VALUE     TOOLS\n")
	b.WriteString(rule(60) + "\n")
	for i, w := range mine {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %s  %-28s %8s ∞  %d tools", prefix(w.ID, 8), w.Title, group(w.Value), w.Tools)
	}
	return Result{Output: b.String(), Type: TypeInfo}
}

func listAll(snap Snapshot) Result {
	if len(snap.Worlds) == 0 {
		return Result{Output: "No worlds in ecosystem yet.", Type: TypeWarning}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ALL WORLDS (%d)\n%s", len(snap.Worlds), rule(60))
	for _, w := range snap.Worlds {
		tag := ""
		if w.Listed {
			tag = "  FOR SALE"
		}
		fmt.Fprintf(&b, "\n  %s  %-28s %8s ∞%s", prefix(w.ID, 8), w.Title, group(w.Value), tag)
	}
	return Result{Output: b.String(), Type: TypeInfo}
}

func top(snap Snapshot) Result {
	if len(snap.Worlds) == 0 {
		return Result{Output: "No worlds yet.", Type: TypeWarning}
	}
	sorted := make([]WorldLine, len(snap.Worlds))
	copy(sorted, snap.Worlds)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	medals := []string{"1.", "2.", "3.", "4.", "5."}
	var b strings.Builder
	fmt.Fprintf(&b, "TOP WORLDS BY VALUE\n%s", rule(50))
	for i, w := range sorted {
		fmt.Fprintf(&b, "\n  %s %-30s %s ∞", medals[i], w.Title, group(w.Value))
	}
	return Result{Output: b.String(), Type: TypeInfo}
}

func show(id string, snap Snapshot) Result {
	for _, w := range snap.Worlds {
		if w.ID == id || strings.HasPrefix(w.ID, id) {
			sale := "No"
			if w.Listed {
				sale = fmt.Sprintf("Yes (%d ∞)", w.SalePrice)
			}
			lines := []string{
				"WORLD: " + w.Title,
				rule(40),
				"ID:          " + w.ID,
				"Description: " + w.Description,
				"Value:       " + group(w.Value) + " ∞",
				fmt.Sprintf("Tools:       %d", w.Tools),
				fmt.Sprintf("Pages:       %d", w.Pages),
				"Owner:       " + prefix(w.Owner, 12) + "...",
				"For Sale:    " + sale,
				"Created:     " + time.UnixMilli(w.CreatedAt).Format("1/2/2006"),
			}
			return Result{Output: strings.Join(lines, "\n"), Type: TypeInfo}
		}
	}
	return Result{Output: fmt.Sprintf("World %q not found.", id), Type: TypeError}
}

func balance(snap Snapshot) Result {
	if snap.Wallet == nil {
		return Result{Output: "No wallet found. Create a world to initialize your wallet.", Type: TypeWarning}
	}
	lines := []string{
		"WALLET BALANCE",
		rule(30),
		"Infinity:  " + group(snap.Wallet.Infinity) + " ∞",
		"Portfolio: " + group(snap.Wallet.Balance),
		fmt.Sprintf("Tokens:    %d", len(snap.Wallet.Tokens)),
	}
	return Result{Output: strings.Join(lines, "\n"), Type: TypeInfo}
}

func tokens(snap Snapshot) Result {
	if snap.Wallet == nil || len(snap.Wallet.Tokens) == 0 {
		return Result{Output: "No tokens in wallet.", Type: TypeWarning}
	}
	toks := snap.Wallet.Tokens
	shown := toks
	if len(shown) > 10 {
		shown = shown[:10]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "TOKENS (%d)\n%s", len(toks), rule(50))
	for _, t := range shown {
		fmt.Fprintf(&b, "\n  %s  %-28s %8s", prefix(t.ID, 8), t.Title, group(t.Value))
	}
	if len(toks) > 10 {
		fmt.Fprintf(&b, "\n  ...and %d more", len(toks)-10)
	}
	return Result{Output: b.String(), Type: TypeInfo}
}

func status(snap Snapshot) Result {
	lines := []string{
		"INFINITY SPARK STATUS",
		rule(35),
		"Portal:    ONLINE",
		"Hub:       ONLINE",
		"Market:    ONLINE",
		"Trading:   ONLINE",
		"Music Hub: ONLINE",
		"Dashboard: ONLINE",
		"Terminal:  ONLINE",
		rule(35),
		"Network:   9/12 nodes active",
		fmt.Sprintf("Worlds:    %d in ecosystem", len(snap.Worlds)),
		"",
		"All systems operational.",
	}
	return Result{Output: strings.Join(lines, "\n"), Type: TypeSuccess}
}

const sparksText = `SPARK NETWORK
────────────────────────────────────────
  core      ok  8 connections
  hub       ok  12 connections
  market    ok  6 connections
  portal    ok  9 connections
  terminal  ok  4 connections
  vault     ok  5 connections
  relay     ok  7 connections
  nexus     ok  10 connections
  forge     idle
  mint      idle
  studio    idle
  beacon    ok  6 connections
────────────────────────────────────────
9/12 nodes online`

const helpText = `┌─────────────────────────────────────────────────┐
│           INFINITY SPARK TERMINAL v1.0          │
└─────────────────────────────────────────────────┘

NAVIGATION
  hub             → Open Infinity Hub (world builder)
  market          → Open Marketplace
  trade           → Open Trading
  music           → Open Music Hub
  dash            → Open Spark Dashboard
  profile         → Open User Profile
  wallet          → Open Wallet

WORLDS
  ls / list       → List all your worlds
  ls --all        → List all worlds in ecosystem
  show <id>       → Show world details
  top             → Show top 5 worlds by value

WALLET
  balance         → Show your balance
  tokens          → List your tokens
  address         → Show your wallet address

SYSTEM
  status          → Show system status
  sparks          → Show spark network status
  clear           → Clear terminal
  help            → Show this help

EXAMPLES
  > ls
  > top
  > balance
  > navigate market`

func rule(n int) string { return strings.Repeat("─", n) }

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// group renders n with comma thousands separators.
func group(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
