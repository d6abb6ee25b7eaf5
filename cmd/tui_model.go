package cmd

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/catalog"
	"github.com/tayloree/shopcli/internal/display"
	"github.com/tayloree/shopcli/internal/filter"
)

const (
	minTUIWidth  = 92
	minTUIHeight = 24
)

var (
	tuiHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tuiMetaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiHintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiOffStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	tuiNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	tuiMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tuiSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
)

type tuiLoadConfig struct {
	ctx     context.Context
	load    func(ctx context.Context) (*api.Snapshot, error)
	request catalog.Request
}

type tuiDataLoadedMsg struct {
	snapshot *api.Snapshot
}

type tuiDataLoadErrMsg struct {
	err error
}

type tuiFocus int

const (
	tuiFocusList tuiFocus = iota
	tuiFocusDetail
)

type tuiGroupItem struct {
	name    string
	count   int
	ordinal int
}

func (g tuiGroupItem) FilterValue() string { return strings.ToLower(g.name) }
func (g tuiGroupItem) Title() string       { return fmt.Sprintf("%d. %s", g.ordinal, g.name) }
func (g tuiGroupItem) Description() string {
	return fmt.Sprintf("Brand • %d products", g.count)
}

type tuiProductItem struct {
	product     api.Product
	group       string
	title       string
	description string
	filterValue string
}

func (p tuiProductItem) FilterValue() string { return p.filterValue }
func (p tuiProductItem) Title() string       { return p.title }
func (p tuiProductItem) Description() string { return p.description }

// priceChoice is one entry of the price cycle: any price, a band, or the
// custom range given on the command line.
type priceChoice struct {
	label string
	price filter.PriceRange
}

type productsTUIModel struct {
	loading  bool
	spinner  spinner.Model
	loadCmd  tea.Cmd
	fatalErr error

	snapshot *api.Snapshot
	listing  *catalog.Listing
	request  catalog.Request
	initial  catalog.Request

	sortIndex       int
	brandChoices    []filter.Set
	brandIndex      int
	ramChoices      []filter.Set
	ramIndex        int
	tagChoices      []filter.Set
	tagIndex        int
	discountChoices []*int
	discountIndex   int
	priceChoices    []priceChoice
	priceIndex      int
	limitChoices    []int
	limitIndex      int

	list   list.Model
	detail viewport.Model

	focus      tuiFocus
	showHelp   bool
	selectedID string

	groupStarts     []int
	visibleProducts int

	width, height   int
	bodyHeight      int
	listPaneWidth   int
	detailPaneWidth int
	tooSmall        bool
}

func newLoadingProductsTUIModel(cfg tuiLoadConfig) productsTUIModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(1)

	lst := list.New([]list.Item{}, delegate, 0, 0)
	lst.Title = "Products"
	lst.SetStatusBarItemName("item", "items")
	lst.SetShowStatusBar(true)
	lst.SetFilteringEnabled(true)
	lst.SetShowHelp(false)
	lst.SetShowPagination(true)
	lst.DisableQuitKeybindings()

	detail := viewport.New(0, 0)
	detail.KeyMap.PageDown.SetKeys("f", "pgdown")
	detail.KeyMap.PageUp.SetKeys("b", "pgup")
	detail.KeyMap.HalfPageDown.SetKeys("d")
	detail.KeyMap.HalfPageUp.SetKeys("u")

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return productsTUIModel{
		loading: true,
		spinner: spin,
		loadCmd: loadTUIDataCmd(cfg),
		request: cfg.request,
		initial: cfg.request,
		list:    lst,
		detail:  detail,
		focus:   tuiFocusList,
	}
}

func loadTUIDataCmd(cfg tuiLoadConfig) tea.Cmd {
	return func() tea.Msg {
		snap, err := cfg.load(cfg.ctx)
		if err != nil {
			return tuiDataLoadErrMsg{err: err}
		}
		return tuiDataLoadedMsg{snapshot: snap}
	}
}

func (m productsTUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd)
}

func (m productsTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tuiDataLoadedMsg:
		m.loading = false
		listing, err := browseDefaultPath(msg.snapshot, m.request)
		if err != nil {
			m.fatalErr = err
			return m, tea.Quit
		}
		m.snapshot = msg.snapshot
		m.request.Path = strings.Join(listing.Resolution.Names(), "/")
		m.initial.Path = m.request.Path
		m.initializeInlineChoices(listing.Facets)
		m.applyCurrentFilters(true)
		m.resize()
		return m, nil

	case tuiDataLoadErrMsg:
		m.loading = false
		m.fatalErr = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		if keyMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	if m.loading || m.snapshot == nil {
		return m, nil
	}

	if isKey {
		filtering := m.list.FilterState() == list.Filtering
		key := keyMsg.String()

		if !filtering {
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				if m.focus == tuiFocusList {
					m.focus = tuiFocusDetail
				} else {
					m.focus = tuiFocusList
				}
				return m, nil
			case "esc":
				if m.focus == tuiFocusDetail {
					m.focus = tuiFocusList
					return m, nil
				}
			case "?":
				m.showHelp = !m.showHelp
				m.resize()
				return m, nil
			case "s":
				m.cycleSort()
				return m, nil
			case "a":
				m.brandIndex = cycle(m.brandIndex, len(m.brandChoices))
				m.applyCurrentFilters(false)
				return m, nil
			case "m":
				m.ramIndex = cycle(m.ramIndex, len(m.ramChoices))
				m.applyCurrentFilters(false)
				return m, nil
			case "t":
				m.tagIndex = cycle(m.tagIndex, len(m.tagChoices))
				m.applyCurrentFilters(false)
				return m, nil
			case "o":
				m.discountIndex = cycle(m.discountIndex, len(m.discountChoices))
				m.applyCurrentFilters(false)
				return m, nil
			case "p":
				m.priceIndex = cycle(m.priceIndex, len(m.priceChoices))
				m.applyCurrentFilters(false)
				return m, nil
			case "l":
				m.limitIndex = cycle(m.limitIndex, len(m.limitChoices))
				m.applyCurrentFilters(false)
				return m, nil
			case "r":
				m.request = m.initial
				m.syncChoiceIndexesFromRequest()
				m.applyCurrentFilters(false)
				return m, nil
			case "]", "[":
				if m.list.IsFiltered() {
					return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps.")
				}
				delta := 1
				if key == "[" {
					delta = -1
				}
				m.jumpSection(delta)
				return m, nil
			}

			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				if m.list.IsFiltered() {
					return m, m.list.NewStatusMessage("Clear fuzzy filter before section jumps.")
				}
				m.jumpToSection(int(key[0] - '1'))
				return m, nil
			}

			if m.focus == tuiFocusDetail {
				var cmd tea.Cmd
				m.detail, cmd = m.detail.Update(msg)
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshDetail(false)
	return m, cmd
}

func (m productsTUIModel) View() string {
	if m.loading {
		return m.loadingView()
	}
	if m.width == 0 || m.height == 0 {
		return tuiMetaStyle.Render("Loading interface...")
	}
	if m.tooSmall {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(
				fmt.Sprintf(
					"Terminal too small (%dx%d).\nResize to at least %dx%d for the two-pane product browser.",
					m.width, m.height, minTUIWidth, minTUIHeight,
				),
			)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		m.bodyView(),
		m.footerView(),
	)
}

func (m productsTUIModel) loadingView() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	skeletonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	lines := []string{
		tuiHeaderStyle.Render("shopcli tui"),
		tuiMetaStyle.Render("Preparing interactive interface..."),
		"",
		fmt.Sprintf("%s Fetching categories and products", m.spinner.View()),
		tuiHintStyle.Render("Tip: press q to cancel."),
		"",
		skeletonStyle.Render("┌──────────────────────────────┬─────────────────────────────────────────┐"),
		skeletonStyle.Render("│  Loading product list...     │  Loading detail panel...                │"),
		skeletonStyle.Render("│  • category path             │  • price and savings                    │"),
		skeletonStyle.Render("│  • brand sections            │  • tags and specs                       │"),
		skeletonStyle.Render("│  • facet choices             │  • scroll viewport                      │"),
		skeletonStyle.Render("└──────────────────────────────┴─────────────────────────────────────────┘"),
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (m *productsTUIModel) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	if m.loading {
		return
	}

	m.tooSmall = m.width < minTUIWidth || m.height < minTUIHeight
	if m.tooSmall {
		return
	}

	headerH := 3
	footerH := 2
	if m.showHelp {
		footerH = 7
	}
	m.bodyHeight = max(8, m.height-headerH-footerH-1)

	listWidth := max(40, int(float64(m.width)*0.43))
	if listWidth > m.width-42 {
		listWidth = m.width / 2
	}
	detailWidth := m.width - listWidth - 1
	if detailWidth < 36 {
		detailWidth = 36
		listWidth = m.width - detailWidth - 1
	}

	m.listPaneWidth = listWidth
	m.detailPaneWidth = detailWidth

	panelInnerHeight := max(6, m.bodyHeight-2)
	m.list.SetSize(max(24, listWidth-4), panelInnerHeight)
	m.detail.Width = max(24, detailWidth-4)
	m.detail.Height = panelInnerHeight
	m.refreshDetail(false)
}

func (m productsTUIModel) headerView() string {
	focus := "list"
	if m.focus == tuiFocusDetail {
		focus = "detail"
	}

	crumbs := m.request.Path
	matched := 0
	if m.listing != nil {
		crumbs = strings.Join(m.listing.Resolution.Names(), " › ")
		matched = m.listing.Matched
	}

	top := fmt.Sprintf("shopcli tui  |  %s", crumbs)
	bottom := fmt.Sprintf(
		"products: %d visible / %d in category  |  sort: %s  |  filters: %s  |  focus: %s",
		m.visibleProducts, matched, m.request.Sort.Label(), m.activeFilterSummary(), focus,
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(tuiHeaderStyle.Render(top) + "\n" + tuiMetaStyle.Render(bottom))
}

func (m productsTUIModel) bodyView() string {
	listBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1)
	detailBorder := listBorder

	if m.focus == tuiFocusList {
		listBorder = listBorder.BorderForeground(lipgloss.Color("86"))
	} else {
		detailBorder = detailBorder.BorderForeground(lipgloss.Color("86"))
	}

	left := listBorder.
		Width(m.listPaneWidth).
		Height(m.bodyHeight).
		Render(m.list.View())
	right := detailBorder.
		Width(m.detailPaneWidth).
		Height(m.bodyHeight).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m productsTUIModel) footerView() string {
	base := "Tab switch pane • / fuzzy filter • s sort • a brand • m ram • t tag • o discount • p price • l limit • r reset • [/] brand jump • q quit"
	if m.focus == tuiFocusDetail {
		base = "Detail: j/k or ↑/↓ scroll • u/d half-page • b/f page • esc list • ? help • q quit"
	}

	if !m.showHelp {
		return lipgloss.NewStyle().Padding(0, 1).Render(tuiHintStyle.Render(base))
	}

	lines := []string{
		"Key Help",
		"list pane: ↑/↓ or j/k move • / fuzzy filter • s sort • a brand • m ram • t tag • o discount floor • p price band • l limit",
		"brand jumps: ] next brand • [ previous brand • 1..9 jump to numbered brand header",
		"detail pane: j/k or ↑/↓ scroll • u/d half-page • b/f page up/down",
		"global: tab switch pane • esc list • r reset filters • ? toggle help • q quit • ctrl+c force quit",
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(tuiHintStyle.Render(strings.Join(lines, "\n")))
}

// initializeInlineChoices builds the cycle lists from the category's facets.
// Facets come from the whole category, so the lists stay fixed while filters
// change.
func (m *productsTUIModel) initializeInlineChoices(facets catalog.Facets) {
	opts := m.request.Filter
	m.brandChoices = buildSetChoices(facets.Brands, opts.Brands)
	m.ramChoices = buildSetChoices(facets.RAM, opts.RAM)
	m.tagChoices = buildSetChoices(facets.Tags, opts.Tags)
	m.discountChoices = buildDiscountChoices(opts.MinDiscount)
	m.priceChoices = buildPriceChoices(opts.Price)
	m.limitChoices = buildLimitChoices(m.request.Limit)

	m.syncChoiceIndexesFromRequest()
}

func (m *productsTUIModel) syncChoiceIndexesFromRequest() {
	opts := m.request.Filter
	m.sortIndex = max(0, indexOfSort(filter.SortStrategies, m.request.Sort))
	m.brandIndex = max(0, indexOfSet(m.brandChoices, opts.Brands))
	m.ramIndex = max(0, indexOfSet(m.ramChoices, opts.RAM))
	m.tagIndex = max(0, indexOfSet(m.tagChoices, opts.Tags))
	m.discountIndex = max(0, indexOfDiscount(m.discountChoices, opts.MinDiscount))
	m.priceIndex = max(0, indexOfPrice(m.priceChoices, opts.Price))
	m.limitIndex = max(0, indexOfInt(m.limitChoices, m.request.Limit))
}

func (m *productsTUIModel) cycleSort() {
	m.sortIndex = cycle(m.sortIndex, len(filter.SortStrategies))
	m.applyCurrentFilters(false)
}

// currentRequest rebuilds the browse request from the selected choices.
func (m productsTUIModel) currentRequest() catalog.Request {
	req := m.request
	req.Sort = filter.SortStrategies[m.sortIndex]
	req.Filter = filter.Options{
		Price:       m.priceChoices[m.priceIndex].price,
		Tags:        m.tagChoices[m.tagIndex],
		Brands:      m.brandChoices[m.brandIndex],
		RAM:         m.ramChoices[m.ramIndex],
		MinDiscount: m.discountChoices[m.discountIndex],
	}
	req.Limit = m.limitChoices[m.limitIndex]
	return req
}

func (m productsTUIModel) activeFilterSummary() string {
	opts := m.request.Filter
	parts := []string{}
	if !opts.Brands.IsEmpty() {
		parts = append(parts, "brand:"+strings.Join(opts.Brands, "|"))
	}
	if !opts.RAM.IsEmpty() {
		parts = append(parts, "ram:"+strings.Join(opts.RAM, "|"))
	}
	if !opts.Tags.IsEmpty() {
		parts = append(parts, "tag:"+strings.Join(opts.Tags, "|"))
	}
	if opts.MinDiscount != nil {
		parts = append(parts, fmt.Sprintf("off:%d%%+", *opts.MinDiscount))
	}
	if len(m.priceChoices) > 0 && m.priceIndex > 0 {
		parts = append(parts, "price:"+m.priceChoices[m.priceIndex].label)
	}
	if m.request.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit:%d", m.request.Limit))
	}
	if fuzzy := strings.TrimSpace(m.list.FilterValue()); fuzzy != "" {
		parts = append(parts, "fuzzy:"+fuzzy)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func (m *productsTUIModel) applyCurrentFilters(resetSelection bool) {
	if m.snapshot == nil {
		return
	}
	m.request = m.currentRequest()

	listing, err := catalog.Browse(m.snapshot.Categories, m.snapshot.Products, m.request)
	if err != nil {
		m.list.NewStatusMessage(err.Error())
		return
	}
	m.listing = listing
	m.visibleProducts = len(listing.Products)

	currentID := m.selectedID
	items, starts := buildGroupedListItems(listing.Products)
	m.groupStarts = starts

	m.list.Title = fmt.Sprintf("Products • %d visible", m.visibleProducts)
	m.list.SetItems(items)

	target := -1
	if !resetSelection && currentID != "" {
		target = findItemIndexByID(items, currentID)
	}
	if target < 0 {
		target = firstProductIndexFrom(items, 0)
	}
	if target < 0 && len(items) > 0 {
		target = 0
	}
	if target >= 0 {
		m.list.Select(target)
	}

	m.refreshDetail(true)
}

func (m *productsTUIModel) refreshDetail(resetScroll bool) {
	var content string
	nextID := ""

	if selected := m.list.SelectedItem(); selected != nil {
		switch item := selected.(type) {
		case tuiProductItem:
			content = renderProductDetailContent(item.product, m.detail.Width)
			nextID = stableIDForItem(item)
		case tuiGroupItem:
			content = m.renderGroupDetail(item)
			nextID = stableIDForItem(item)
		}
	}
	if content == "" {
		content = "No products match the current filters.\n\nTry pressing r to reset filters."
	}

	if resetScroll || nextID != m.selectedID {
		m.detail.GotoTop()
	}
	m.selectedID = nextID
	m.detail.SetContent(content)
}

func (m productsTUIModel) renderGroupDetail(group tuiGroupItem) string {
	preview := m.groupPreviewTitles(group.name, 5)

	lines := []string{
		tuiSectionStyle.Render(fmt.Sprintf("Brand %d: %s", group.ordinal, group.name)),
		tuiMetaStyle.Render(fmt.Sprintf("%d products from this brand", group.count)),
		"",
		tuiMetaStyle.Render("Jump keys:"),
		"- `]` next brand, `[` previous brand",
		"- `1..9` jump directly to brand number",
	}
	if len(preview) > 0 {
		lines = append(lines, "")
		lines = append(lines, tuiMetaStyle.Render("Preview:"))
		for _, title := range preview {
			lines = append(lines, "• "+title)
		}
	}

	return strings.Join(lines, "\n")
}

func (m productsTUIModel) groupPreviewTitles(group string, limit int) []string {
	out := make([]string, 0, limit)
	for _, item := range m.list.Items() {
		product, ok := item.(tuiProductItem)
		if !ok || product.group != group {
			continue
		}
		out = append(out, product.title)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func (m *productsTUIModel) jumpToSection(index int) {
	if index < 0 || index >= len(m.groupStarts) {
		return
	}

	target := firstProductIndexFrom(m.list.Items(), m.groupStarts[index])
	if target < 0 {
		target = m.groupStarts[index]
	}
	m.list.Select(target)
	m.refreshDetail(true)
}

func (m *productsTUIModel) jumpSection(delta int) {
	if len(m.groupStarts) == 0 {
		return
	}

	current := max(0, m.currentSectionIndex())
	next := current + delta
	if next < 0 {
		next = len(m.groupStarts) - 1
	}
	if next >= len(m.groupStarts) {
		next = 0
	}
	m.jumpToSection(next)
}

func (m productsTUIModel) currentSectionIndex() int {
	if len(m.groupStarts) == 0 {
		return -1
	}
	cursor := m.list.GlobalIndex()
	current := 0
	for i, start := range m.groupStarts {
		if start > cursor {
			break
		}
		current = i
	}
	return current
}

// buildGroupedListItems sections products by brand. Sections appear in the
// order their first product does, so the active sort still reads top to bottom.
func buildGroupedListItems(products []api.Product) (items []list.Item, starts []int) {
	if len(products) == 0 {
		return nil, nil
	}

	var order []string
	groups := map[string][]api.Product{}
	for _, p := range products {
		group := productGroupLabel(p)
		if _, seen := groups[group]; !seen {
			order = append(order, group)
		}
		groups[group] = append(groups[group], p)
	}

	items = make([]list.Item, 0, len(products)+len(order))
	starts = make([]int, 0, len(order))
	for idx, name := range order {
		starts = append(starts, len(items))
		items = append(items, tuiGroupItem{
			name:    name,
			count:   len(groups[name]),
			ordinal: idx + 1,
		})
		for _, p := range groups[name] {
			items = append(items, buildTUIProductItem(p, name))
		}
	}
	return items, starts
}

func productGroupLabel(p api.Product) string {
	if brand := strings.TrimSpace(p.Brand); brand != "" {
		return brand
	}
	return "Other"
}

func buildTUIProductItem(p api.Product, group string) tuiProductItem {
	title := productTitle(p)

	descParts := []string{display.FormatPrice(p.Price)}
	if p.Discount != "" {
		descParts = append(descParts, p.Discount)
	}
	if p.RAM != "" {
		descParts = append(descParts, p.RAM)
	}
	if p.Rating != nil {
		descParts = append(descParts, fmt.Sprintf("★ %.1f", *p.Rating))
	}

	filterTokens := []string{
		title,
		p.Brand,
		p.RAM,
		p.Discount,
		strings.Join(p.Tags, " "),
		group,
	}

	return tuiProductItem{
		product:     p,
		group:       group,
		title:       title,
		description: strings.Join(descParts, "  •  "),
		filterValue: strings.ToLower(strings.Join(filterTokens, " ")),
	}
}

func renderProductDetailContent(p api.Product, width int) string {
	maxWidth := max(24, width)

	lines := []string{
		tuiNameStyle.Render(wrapText(productTitle(p), maxWidth)),
	}

	metaBits := []string{}
	if p.Discount != "" {
		metaBits = append(metaBits, tuiOffStyle.Render(p.Discount))
	}
	if p.Brand != "" {
		metaBits = append(metaBits, "brand: "+p.Brand)
	}
	if len(metaBits) > 0 {
		lines = append(lines, tuiMetaStyle.Render(wrapText(strings.Join(metaBits, "  |  "), maxWidth)))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Price:"), tuiValueStyle.Render(display.FormatPrice(p.Price))))
	if saved, pct := display.Savings(p); saved.IsPositive() {
		lines = append(lines, fmt.Sprintf("%s %s, save %s (%d%%)",
			tuiMetaStyle.Render("Was:"),
			display.FormatPrice(*p.OriginalPrice),
			display.FormatPrice(saved.InexactFloat64()),
			pct,
		))
	}
	if p.Rating != nil {
		lines = append(lines, fmt.Sprintf("%s ★ %.1f", tuiMetaStyle.Render("Rating:"), *p.Rating))
	}
	lines = append(lines, "")

	if p.RAM != "" {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("RAM:"), p.RAM))
	}
	if p.Category != "" {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Category:"), p.Category))
	}
	if subs := subCategoryNames(p); len(subs) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Subcategories:"), wrapText(strings.Join(subs, ", "), maxWidth)))
	}
	if len(p.Tags) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Tags:"), wrapText(strings.Join(p.Tags, ", "), maxWidth)))
	}
	lines = append(lines, fmt.Sprintf("%s %s", tuiMetaStyle.Render("Stock:"), strconv.Itoa(p.Stock)))

	if image := strings.TrimSpace(p.Image); image != "" {
		lines = append(lines, "")
		lines = append(lines, tuiMutedStyle.Render("Image URL:"))
		lines = append(lines, tuiMutedStyle.Render(wrapText(image, maxWidth)))
	}

	return strings.Join(lines, "\n")
}

func subCategoryNames(p api.Product) []string {
	names := make([]string, 0, len(p.SubCategories)+1)
	for _, sub := range p.SubCategories {
		names = append(names, sub.Name)
	}
	if p.SubCategory != nil && p.SubCategory.Name != "" {
		names = append(names, p.SubCategory.Name)
	}
	return names
}

func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width < 12 {
		width = 12
	}

	line := words[0]
	lines := make([]string, 0, len(words)/6+1)
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

// buildSetChoices offers "none" and then each facet value on its own. A
// selection from the command line that is not a single facet value is kept as
// its own entry right after "none".
func buildSetChoices(values []string, current filter.Set) []filter.Set {
	choices := make([]filter.Set, 0, len(values)+2)
	choices = append(choices, nil)
	for _, v := range values {
		choices = append(choices, filter.Set{v})
	}
	if !current.IsEmpty() && indexOfSet(choices, current) < 0 {
		choices = append(choices[:1], append([]filter.Set{current}, choices[1:]...)...)
	}
	return choices
}

func buildDiscountChoices(current *int) []*int {
	choices := []*int{nil}
	for _, pct := range filter.DiscountPresets {
		choices = append(choices, filter.Int(pct))
	}
	if current != nil && indexOfDiscount(choices, current) < 0 {
		choices = append(choices[:1], append([]*int{filter.Int(*current)}, choices[1:]...)...)
	}
	return choices
}

func buildPriceChoices(current filter.PriceRange) []priceChoice {
	choices := []priceChoice{{label: "any"}}
	for _, band := range filter.PriceBands {
		choices = append(choices, priceChoice{label: band.ID, price: band.Range()})
	}
	if !current.IsEmpty() && indexOfPrice(choices, current) < 0 {
		choices = append(choices[:1], append([]priceChoice{{label: "custom", price: current}}, choices[1:]...)...)
	}
	return choices
}

func buildLimitChoices(current int) []int {
	values := []int{0, 10, 25, 50, 100}
	if current > 0 && indexOfInt(values, current) < 0 {
		values = append(values, current)
		slices.Sort(values)
	}
	return values
}

func cycle(index, n int) int {
	if n == 0 {
		return 0
	}
	return (index + 1) % n
}

func indexOfSort(values []filter.SortStrategy, target filter.SortStrategy) int {
	if target == "" {
		target = filter.SortPopularity
	}
	return slices.Index(values, target)
}

func indexOfSet(values []filter.Set, target filter.Set) int {
	return slices.IndexFunc(values, func(v filter.Set) bool {
		return slices.Equal(v, target)
	})
}

func indexOfDiscount(values []*int, target *int) int {
	return slices.IndexFunc(values, func(v *int) bool {
		if v == nil || target == nil {
			return v == nil && target == nil
		}
		return *v == *target
	})
}

func indexOfPrice(values []priceChoice, target filter.PriceRange) int {
	return slices.IndexFunc(values, func(v priceChoice) bool {
		return sameBound(v.price.Min, target.Min) && sameBound(v.price.Max, target.Max)
	})
}

func sameBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func indexOfInt(values []int, target int) int {
	return slices.Index(values, target)
}

func findItemIndexByID(items []list.Item, stableID string) int {
	for i, item := range items {
		if stableIDForItem(item) == stableID {
			return i
		}
	}
	return -1
}

func firstProductIndexFrom(items []list.Item, start int) int {
	for i := start; i < len(items); i++ {
		if _, ok := items[i].(tuiProductItem); ok {
			return i
		}
	}
	return -1
}

func stableIDForItem(item list.Item) string {
	switch value := item.(type) {
	case tuiProductItem:
		if id := strings.TrimSpace(value.product.ID); id != "" {
			return "product:" + id
		}
		return "product:title:" + strings.ToLower(value.title)
	case tuiGroupItem:
		return "group:" + strings.ToLower(strings.TrimSpace(value.name))
	default:
		return ""
	}
}
