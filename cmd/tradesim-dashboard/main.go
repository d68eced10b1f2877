package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"tradesim/internal/api"
	"tradesim/internal/config"
	"tradesim/internal/dashboard"
	"tradesim/internal/domain"
	"tradesim/internal/market"
	"tradesim/internal/metrics"
	"tradesim/internal/session"
	"tradesim/internal/store"
	"tradesim/internal/trade"
	"tradesim/internal/util"
)

// Styles.
var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	symbolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	symbolHlStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	upStatusStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Background(lipgloss.Color("4"))
	downStatus     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Background(lipgloss.Color("4"))
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 3)
	alertStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnLogStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	highlightBG    = lipgloss.Color("236")
)

func levelStyle(l session.Level) lipgloss.Style {
	switch l {
	case session.LevelSuccess:
		return successStyle
	case session.LevelWarning:
		return warnLogStyle
	case session.LevelError:
		return lossStyle
	default:
		return dimStyle
	}
}

// Messages.
type tickMsg time.Time

type refreshDoneMsg struct{ err error }

type tradeDoneMsg struct {
	trade *domain.Trade
	err   error
}

type serverMetricsMsg struct {
	raw json.RawMessage
	err error
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model.
type model struct {
	cfg      *config.Config
	store    *session.Store
	journal  *session.ActivityLog
	client   *api.Client
	syncer   *market.Syncer
	workflow *trade.Workflow

	competitors map[string]bool
	cancel      context.CancelFunc

	viewport      viewport.Model
	ready         bool
	width, height int

	selected   int    // index into the ordered symbol list
	quantity   string // modal quantity being edited
	alert      string // last trade failure, shown in the modal
	refreshing bool
}

func initialModel(cfg *config.Config, st *session.Store, journal *session.ActivityLog, client *api.Client, syncer *market.Syncer, wf *trade.Workflow, cancel context.CancelFunc) model {
	competitors := make(map[string]bool, len(cfg.Market.Competitors))
	for _, sym := range cfg.Market.Competitors {
		competitors[sym] = true
	}
	return model{
		cfg:         cfg,
		store:       st,
		journal:     journal,
		client:      client,
		syncer:      syncer,
		workflow:    wf,
		competitors: competitors,
		cancel:      cancel,
		quantity:    "1",
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd(2 * time.Second)
}

// orderedSymbols lists primary stocks first, then competitor-flagged
// ones, preserving snapshot order within each group.
func (m *model) orderedSymbols() []domain.Stock {
	stocks := m.store.Stocks()
	out := make([]domain.Stock, 0, len(stocks))
	for _, s := range stocks {
		if !m.competitors[s.Symbol] {
			out = append(out, s)
		}
	}
	for _, s := range stocks {
		if m.competitors[s.Symbol] {
			out = append(out, s)
		}
	}
	return out
}

func (m *model) selectedStock() (domain.Stock, bool) {
	stocks := m.orderedSymbols()
	if len(stocks) == 0 {
		return domain.Stock{}, false
	}
	if m.selected >= len(stocks) {
		m.selected = len(stocks) - 1
	}
	return stocks[m.selected], true
}

func (m *model) refreshCmd() tea.Cmd {
	m.refreshing = true
	syncer := m.syncer
	return func() tea.Msg {
		return refreshDoneMsg{err: syncer.Refresh(context.Background())}
	}
}

func (m *model) submitCmd() tea.Cmd {
	qty, err := strconv.Atoi(m.quantity)
	if err != nil {
		qty = 0
	}
	wf := m.workflow
	return func() tea.Msg {
		executed, err := wf.Submit(context.Background(), qty)
		return tradeDoneMsg{trade: executed, err: err}
	}
}

func (m *model) serverMetricsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		raw, err := client.ServerMetrics(context.Background())
		return serverMetricsMsg{raw: raw, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.workflow.State() != trade.StateIdle {
			return m.updateModal(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case "r":
			if m.refreshing {
				return m, nil
			}
			return m, m.refreshCmd()
		case "m":
			return m, m.serverMetricsCmd()
		case "up":
			if m.selected > 0 {
				m.selected--
			}
			m.setContent()
			return m, nil
		case "down":
			if m.selected < len(m.orderedSymbols())-1 {
				m.selected++
			}
			m.setContent()
			return m, nil
		case "b", "s":
			stock, ok := m.selectedStock()
			if !ok {
				return m, nil
			}
			side := domain.SideBuy
			if msg.String() == "s" {
				side = domain.SideSell
			}
			if err := m.workflow.Open(stock.Symbol, side); err != nil {
				m.journal.Append(session.LevelError,
					fmt.Sprintf("cannot open trade for %s: %v", stock.Symbol, err))
			} else {
				m.quantity = "1"
				m.alert = ""
			}
			m.setContent()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.setContent()
		return m, nil

	case tickMsg:
		m.setContent()
		return m, tickCmd(2 * time.Second)

	case refreshDoneMsg:
		m.refreshing = false
		if msg.err != nil {
			// Already journaled by the client; nothing else to do.
			m.setContent()
			return m, nil
		}
		m.setContent()
		return m, nil

	case tradeDoneMsg:
		if msg.err != nil {
			m.alert = msg.err.Error()
		} else {
			m.alert = ""
		}
		m.setContent()
		return m, nil

	case serverMetricsMsg:
		if msg.err == nil {
			m.journal.Append(session.LevelInfo, summarizeServerMetrics(msg.raw))
		}
		m.setContent()
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// updateModal handles keys while the trade modal is open.
func (m model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.workflow.State() == trade.StateSubmitting {
		// Everything except quit waits for the in-flight order.
		if s := msg.String(); s == "q" || s == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}
		return m, nil
	}

	switch s := msg.String(); s {
	case "q", "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "esc":
		m.workflow.Close()
		m.alert = ""
		m.setContent()
		return m, nil
	case "enter":
		return m, m.submitCmd()
	case "backspace":
		if len(m.quantity) > 0 {
			m.quantity = m.quantity[:len(m.quantity)-1]
		}
		m.setContent()
		return m, nil
	default:
		if len(s) == 1 && s[0] >= '0' && s[0] <= '9' && len(m.quantity) < 6 {
			if m.quantity == "0" {
				m.quantity = ""
			}
			m.quantity += s
			m.setContent()
		}
		return m, nil
	}
}

func (m *model) setContent() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := upStatusStyle.Render("● connected")
	if !m.store.Connected() {
		status = downStatus.Render("○ offline")
	}

	v := dashboard.Valuate(m.store.Portfolio(), m.store.Stocks())
	headerText := fmt.Sprintf(" TradeSim  %s    %s    total: %s  cash: %s ",
		time.Now().Format("15:04:05"),
		status,
		dashboard.FormatMoney(v.TotalValue),
		dashboard.FormatMoney(v.Cash),
	)
	header := headerStyle.Render(padOrTrunc(headerText, m.width))

	refreshNote := ""
	if m.refreshing {
		refreshNote = "  refreshing..."
	}
	footerText := " q quit  r refresh  up/dn select  b buy  s sell  m server stats" + refreshNote
	footer := footerStyle.Render(padOrTrunc(footerText, m.width))

	return header + "\n" + m.viewport.View() + "\n" + footer
}

func (m *model) renderContent() string {
	if m.workflow.State() != trade.StateIdle {
		return m.renderModal()
	}

	var b strings.Builder
	m.renderStockTable(&b)
	b.WriteString("\n")
	m.renderPortfolio(&b)
	b.WriteString("\n")
	m.renderActivity(&b)
	return b.String()
}

func (m *model) renderStockTable(b *strings.Builder) {
	stocks := m.orderedSymbols()
	if len(stocks) == 0 {
		b.WriteString(dimStyle.Render("  (no market data yet — press r to refresh)"))
		b.WriteString("\n")
		return
	}

	writeRow := func(idx int, s domain.Stock) {
		hl := idx == m.selected
		rowStyle := func(st lipgloss.Style) lipgloss.Style {
			if hl {
				return st.Background(highlightBG)
			}
			return st
		}

		sym := rowStyle(symbolStyle)
		if hl {
			sym = rowStyle(symbolHlStyle)
		}
		chg := rowStyle(gainStyle)
		if s.DailyChange < 0 {
			chg = rowStyle(lossStyle)
		}
		tot := rowStyle(gainStyle)
		if s.TotalChangePct < 0 {
			tot = rowStyle(lossStyle)
		}

		owned := ""
		if pos, ok := m.store.Position(s.Symbol); ok {
			owned = dashboard.FormatInt(pos.Quantity)
		}

		b.WriteString(sym.Render(fmt.Sprintf("  %-6s", s.Symbol)))
		b.WriteString(rowStyle(priceStyle).Render(fmt.Sprintf(" %10s", dashboard.FormatMoney(s.Price))))
		b.WriteString(chg.Render(fmt.Sprintf(" %9s", dashboard.FormatPct(s.DailyChangePct))))
		b.WriteString(tot.Render(fmt.Sprintf(" %9s", dashboard.FormatPct(s.TotalChangePct))))
		b.WriteString(rowStyle(dimStyle).Render(fmt.Sprintf(" %6s", owned)))
		b.WriteString("  ")
		spark := dashboard.SparkBar(tail(m.store.History(s.Symbol), 20))
		style := gainStyle
		if len(spark) > 0 {
			prices := tail(m.store.History(s.Symbol), 20)
			if prices[len(prices)-1] < prices[0] {
				style = lossStyle
			}
		}
		b.WriteString(rowStyle(style).Render(spark))
		b.WriteString("\n")
	}

	header := fmt.Sprintf("  %-6s %10s %9s %9s %6s  %s", "Symbol", "Price", "Day%", "Total%", "Owned", "Trend")

	idx := 0
	wrote := false
	for _, group := range []struct {
		label      string
		competitor bool
	}{
		{"MARKET", false},
		{"COMPETITORS", true},
	} {
		var rows []domain.Stock
		for _, s := range stocks[idx:] {
			if m.competitors[s.Symbol] != group.competitor {
				break
			}
			rows = append(rows, s)
		}
		if len(rows) == 0 {
			continue
		}
		if wrote {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(" " + group.label))
		b.WriteString("\n")
		b.WriteString(colHeaderStyle.Render(header))
		b.WriteString("\n")
		for _, s := range rows {
			writeRow(idx, s)
			idx++
		}
		wrote = true
	}
}

func (m *model) renderPortfolio(b *strings.Builder) {
	p := m.store.Portfolio()
	v := dashboard.Valuate(p, m.store.Stocks())

	b.WriteString(sectionStyle.Render(" PORTFOLIO"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("   cash %s   positions %s   total %s",
		dashboard.FormatMoney(v.Cash),
		dashboard.FormatMoney(v.PositionsValue),
		dashboard.FormatMoney(v.TotalValue))))
	b.WriteString("\n")

	if len(v.PerPosition) == 0 {
		b.WriteString(dimStyle.Render("  (no positions)"))
		b.WriteString("\n")
		return
	}

	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-6s %6s %12s %12s %9s", "Symbol", "Qty", "Value", "P&L", "P&L%")))
	b.WriteString("\n")
	for _, pos := range v.PerPosition {
		pnlStyle := gainStyle
		if pos.PnL < 0 {
			pnlStyle = lossStyle
		}
		b.WriteString(symbolStyle.Render(fmt.Sprintf("  %-6s", pos.Symbol)))
		b.WriteString(priceStyle.Render(fmt.Sprintf(" %6s", dashboard.FormatInt(pos.Quantity))))
		b.WriteString(priceStyle.Render(fmt.Sprintf(" %12s", dashboard.FormatMoney(pos.CurrentValue))))
		b.WriteString(pnlStyle.Render(fmt.Sprintf(" %12s", dashboard.FormatMoney(pos.PnL))))
		b.WriteString(pnlStyle.Render(fmt.Sprintf(" %9s", dashboard.FormatPct(pos.PnLPct))))
		b.WriteString("\n")
	}
}

func (m *model) renderActivity(b *strings.Builder) {
	b.WriteString(sectionStyle.Render(" ACTIVITY"))
	b.WriteString("\n")

	entries := m.journal.Recent()
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("  (nothing yet)"))
		b.WriteString("\n")
		return
	}
	for _, e := range entries {
		b.WriteString(dimStyle.Render("  " + e.Time.Format("15:04:05") + " "))
		b.WriteString(levelStyle(e.Level).Render(e.Message))
		b.WriteString("\n")
	}
}

func (m *model) renderModal() string {
	view := m.workflow.View()

	var b strings.Builder
	title := fmt.Sprintf("%s %s", strings.ToUpper(string(view.Side)), view.Symbol)
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("price   %s  (%s today)\n",
		dashboard.FormatMoney(view.Price), dashboard.FormatPct(view.DailyChangePct)))
	b.WriteString(fmt.Sprintf("owned   %s\n", dashboard.FormatInt(view.Owned)))

	qtyDisplay := m.quantity
	if qtyDisplay == "" {
		qtyDisplay = "_"
	}
	b.WriteString(fmt.Sprintf("qty     %s\n", qtyDisplay))

	if qty, err := strconv.Atoi(m.quantity); err == nil && qty > 0 {
		if total, err := m.workflow.Quote(qty); err == nil {
			b.WriteString(fmt.Sprintf("total   %s\n", dashboard.FormatMoney(total)))
		}
	}

	b.WriteString("\n")
	if m.workflow.State() == trade.StateSubmitting {
		b.WriteString(dimStyle.Render("submitting..."))
	} else {
		b.WriteString(dimStyle.Render("enter submit  esc cancel  digits edit qty"))
	}
	if m.alert != "" {
		b.WriteString("\n\n")
		b.WriteString(alertStyle.Render(m.alert))
	}

	box := modalStyle.Render(b.String())
	return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}

// summarizeServerMetrics condenses the service's stats blob into one
// journal line.
func summarizeServerMetrics(raw json.RawMessage) string {
	var stats map[string]any
	if err := json.Unmarshal(raw, &stats); err != nil || len(stats) == 0 {
		return "server metrics fetched"
	}
	parts := make([]string, 0, len(stats))
	for k, v := range stats {
		switch v.(type) {
		case float64, string, bool:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		if len(parts) == 6 {
			break
		}
	}
	return "server metrics: " + strings.Join(parts, " ")
}

func tail(prices []float64, n int) []float64 {
	if len(prices) <= n {
		return prices
	}
	return prices[len(prices)-n:]
}

// padOrTrunc pads s with spaces to width, or truncates if longer. Width
// is measured in terminal cells so embedded escape sequences and wide
// glyphs do not skew the layout.
func padOrTrunc(s string, width int) string {
	if lipgloss.Width(s) >= width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	setBalance := flag.Float64("set-balance", 0, "reset the cash balance before starting (0 = leave as is)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	// The terminal belongs to the TUI; logs go to a file.
	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = fmt.Sprintf("/tmp/tradesim-dashboard-%s.log", time.Now().Format("2006-01-02"))
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(logFile, cfg.Logging.Level, cfg.Logging.Format)

	st := session.NewStore()
	journal := session.NewActivityLog()
	client := api.NewClient(cfg.Server.BaseURL, cfg.User.ID, st, journal, logger)

	var cache market.SnapshotCache
	if cfg.Storage.CachePath != "" {
		sqlCache, err := store.NewSQLiteCache(cfg.Storage.CachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening snapshot cache: %v\n", err)
			os.Exit(1)
		}
		defer sqlCache.Close()
		cache = sqlCache
	}

	syncer := market.NewSyncer(client, st, journal, cache, logger,
		cfg.Sync.TickInterval.Std(), cfg.Sync.RefreshInterval.Std(), cfg.Sync.HistoryDays)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := metrics.Serve(cfg.Server.MetricsAddr); err != nil {
			logger.Error("metrics listener", "error", err)
		}
	}()

	// Show last-known data while the first round trip runs.
	if err := syncer.LoadCached(ctx); err != nil {
		logger.Warn("loading snapshot cache", "error", err)
	}

	fmt.Fprint(os.Stderr, "connecting...")
	if err := util.Retry(ctx, 5, 500*time.Millisecond, func() error {
		return client.Health(ctx)
	}); err != nil {
		fmt.Fprintf(os.Stderr, " backend not reachable at %s (starting offline)\n", cfg.Server.BaseURL)
	} else {
		fmt.Fprintln(os.Stderr, " ok")
	}

	if *setBalance > 0 {
		if err := client.SetBalance(ctx, *setBalance); err != nil {
			logger.Error("setting balance", "error", err)
		}
	}

	if st.Connected() {
		if err := syncer.Refresh(ctx); err != nil {
			logger.Warn("initial refresh", "error", err)
		}
		if p, err := client.GetPortfolio(ctx); err == nil {
			st.ReplacePortfolio(*p)
		}
		if trades, err := client.TradeHistory(ctx); err == nil {
			st.ReplaceTrades(trades)
		}
	}

	go syncer.Run(ctx)

	wf := trade.NewWorkflow(client, st, journal, logger)

	p := tea.NewProgram(
		initialModel(cfg, st, journal, client, syncer, wf, cancel),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
