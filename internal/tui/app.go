package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/reel/internal/browse"
	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/search"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/validation"
)

// FavoritesStore is the favorites surface the views use.
type FavoritesStore interface {
	List() []storage.Item
	Toggle(item storage.Item) (bool, error)
	IsFavorite(kind storage.Kind, id int) bool
}

// Opener hands a URL to an external application.
type Opener interface {
	Open(url string) error
}

type Deps struct {
	Feed      *browse.SearchController
	Detail    *browse.DetailController
	Favorites FavoritesStore
	// Searcher filters the favorites view; nil lists everything.
	Searcher search.Searcher
	Opener   Opener
	// Restored means Feed was resumed from a saved session and the home
	// view can render without fetching.
	Restored bool
}

type App struct {
	config     *config.Config
	feed       *browse.SearchController
	detail     *browse.DetailController
	favorites  FavoritesStore
	searcher   search.Searcher
	opener     Opener
	keyHandler *KeyHandler

	homeList    list.Model
	favList     list.Model
	recList     list.Model
	searchInput textinput.Model
	filterInput textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model
	help        help.Model

	view    View
	history []route

	feedSnap      browse.Snapshot
	feedLoading   bool
	detailSnap    browse.DetailSnapshot
	detailLoading bool
	recsFocused   bool
	favQuery      string
	favCount      int

	status     string
	statusKind StatusKind
	err        error

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle
	return l
}

func NewApp(cfg *config.Config, deps Deps) *App {
	ApplyTheme(cfg.UI.Colors)

	si := textinput.New()
	si.Placeholder = "Buscar filmes e séries..."
	si.CharLimit = validation.MaxQueryLength

	fi := textinput.New()
	fi.Placeholder = "Filtrar favoritos..."
	fi.CharLimit = validation.MaxQueryLength

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(AccentColor)),
	)

	app := &App{
		config:      cfg,
		feed:        deps.Feed,
		detail:      deps.Detail,
		favorites:   deps.Favorites,
		searcher:    deps.Searcher,
		opener:      deps.Opener,
		homeList:    newList("› " + MsgTrending),
		favList:     newList("› favoritos"),
		recList:     newList("› recomendações"),
		searchInput: si,
		filterInput: fi,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		help:        help.New(),
		view:        ViewHome,
	}
	app.keyHandler = NewKeyHandler(app, cfg)

	if deps.Restored {
		app.applyFeed(app.feed.Snapshot())
	} else {
		app.feedLoading = true
	}

	return app
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if a.feedLoading {
		cmds = append(cmds, a.spinner.Tick, a.fetchFeed())
	}
	return tea.Batch(cmds...)
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 120 {
		wordWrapWidth = 120
	}
	if wordWrapWidth < 40 {
		wordWrapWidth = 40
	}
	if a.width > 0 && a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.feedLoading && !a.detailLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case feedLoadedMsg:
		if errors.Is(msg.err, browse.ErrStale) {
			return a, nil
		}
		a.feedLoading = false
		if msg.err != nil {
			debuglog.Warnf("tui: feed: %v", msg.err)
		}
		a.applyFeed(msg.snap)
		return a, nil

	case detailLoadedMsg:
		if errors.Is(msg.err, browse.ErrStale) {
			return a, nil
		}
		a.detailLoading = false
		if msg.err != nil {
			debuglog.Warnf("tui: detail %s/%d: %v", msg.snap.Kind, msg.snap.ID, msg.err)
		}
		a.applyDetail(msg.snap)
		return a, nil

	case favoriteToggledMsg:
		if msg.err != nil {
			a.setError(wrapErr("favoritos", msg.err))
			return a, nil
		}
		a.setStatus(MsgFavoriteToggled(msg.item.Title, msg.favorite), StatusSuccess)
		a.refreshHomeMarks()
		switch a.view {
		case ViewDetail:
			a.detailSnap.Favorite = msg.favorite
			a.renderDetail()
		case ViewFavorites:
			return a, a.filterFavorites(a.favQuery)
		}
		return a, nil

	case favoritesFilteredMsg:
		if msg.query != a.favQuery {
			return a, nil
		}
		if msg.err != nil {
			a.setError(wrapErr("filtro", msg.err))
			return a, nil
		}
		a.setFavoriteItems(msg.items)
		return a, nil

	case openedMsg:
		a.setStatus("Abrindo "+msg.what+"…", StatusInfo)
		return a, nil

	case errorMsg:
		a.setError(msg.err)
		return a, nil
	}

	switch a.view {
	case ViewSearch:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	case ViewFavorites:
		var cmd tea.Cmd
		a.filterInput, cmd = a.filterInput.Update(msg)
		cmds = append(cmds, cmd)
	case ViewDetail:
		if _, ok := msg.(tea.MouseMsg); ok {
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

// chromeHeight is the header, footer and status lines around the body.
const chromeHeight = 5

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	bodyHeight := max(height-chromeHeight, 3)

	a.homeList.SetSize(width, bodyHeight)
	a.favList.SetSize(width, bodyHeight-2)
	a.recList.SetSize(width, bodyHeight)
	a.viewport.Width = width
	a.viewport.Height = bodyHeight
	a.help.Width = width

	inputWidth := width - 8
	if inputWidth < 20 {
		inputWidth = width
	}
	a.searchInput.Width = inputWidth
	a.filterInput.Width = inputWidth

	if a.detailSnap.Detail != nil {
		a.renderDetail()
	}
}

func (a *App) applyFeed(snap browse.Snapshot) {
	a.feedSnap = snap
	a.homeList.Title = "› " + MsgTrending
	if snap.Mode == browse.ModeSearch {
		a.homeList.Title = "› " + MsgSearchHeader(snap.Query)
	}
	a.homeList.SetItems(a.toListItems(snap.Results))
	a.homeList.Select(0)
}

func (a *App) applyDetail(snap browse.DetailSnapshot) {
	a.detailSnap = snap
	a.recsFocused = false
	if snap.Detail == nil {
		a.recList.SetItems(nil)
		a.viewport.SetContent("")
		return
	}

	recs := snap.Detail.Recommendations
	if n := a.config.UI.Recommendations; n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	a.recList.SetItems(a.toListItems(recs))
	a.recList.Select(0)
	a.renderDetail()
	a.viewport.GotoTop()
}

func (a *App) renderDetail() {
	d := a.detailSnap.Detail
	if d == nil {
		return
	}
	md := detailMarkdown(*d, a.detailSnap.Favorite, a.config.UI.Recommendations)
	content := md
	if r, err := a.getRenderer(); err == nil {
		if rendered, err := r.Render(md); err == nil {
			content = rendered
		} else {
			debuglog.Warnf("tui: rendering detail: %v", err)
		}
	}
	a.viewport.SetContent(content)
}

func (a *App) setFavoriteItems(items []storage.Item) {
	a.favCount = len(items)
	a.favList.SetItems(a.toListItems(items))
	if a.favList.Index() >= len(items) {
		a.favList.Select(max(len(items)-1, 0))
	}
}

// refreshHomeMarks redraws the favorite markers on the home list.
func (a *App) refreshHomeMarks() {
	idx := a.homeList.Index()
	a.homeList.SetItems(a.toListItems(a.feedSnap.Results))
	a.homeList.Select(idx)
}

func (a *App) toListItems(items []storage.Item) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		fav := a.favorites != nil && a.favorites.IsFavorite(it.Kind, it.ID)
		out[i] = mediaItem{item: it, favorite: fav}
	}
	return out
}

func (a *App) startFeedFetch() tea.Cmd {
	a.feedLoading = true
	return tea.Batch(a.spinner.Tick, a.fetchFeed())
}

func (a *App) startDetailLoad(kind storage.Kind, id int) tea.Cmd {
	a.detailLoading = true
	a.recsFocused = false
	a.detailSnap = browse.DetailSnapshot{Kind: kind, ID: id, Loading: true}
	return tea.Batch(a.spinner.Tick, a.loadDetail(kind, id))
}

// openDetail navigates to a title, remembering where we came from.
func (a *App) openDetail(kind storage.Kind, id int) tea.Cmd {
	a.pushRoute()
	a.view = ViewDetail
	return a.startDetailLoad(kind, id)
}

func (a *App) pushRoute() {
	r := route{view: a.view}
	if a.view == ViewDetail {
		r.kind, r.id = a.detailSnap.Kind, a.detailSnap.ID
	}
	a.history = append(a.history, r)
	if len(a.history) > maxHistory {
		a.history = a.history[len(a.history)-maxHistory:]
	}
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) setError(err error) {
	a.err = err
}

func (a *App) clearStatus() {
	a.status = ""
	a.err = nil
}

func (a *App) View() string {
	bodyHeight := max(a.height-chromeHeight, 3)

	var header, body, footer string
	switch a.view {
	case ViewHome:
		header, body, footer = a.homeView(bodyHeight)
	case ViewSearch:
		header = renderHeader("› buscar", "Deixe em branco para ver o que está em alta", a.width)
		frame := renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)
		body = renderCentered(a.width, bodyHeight, lipgloss.JoinVertical(lipgloss.Center,
			frame,
			"",
			renderHelp("Enter: buscar • Esc: cancelar"),
		))
	case ViewDetail:
		header, body = a.detailView(bodyHeight)
	case ViewFavorites:
		header, body, footer = a.favoritesView(bodyHeight)
	}

	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width, 1)))
	rows := []string{header, ContentWrapper(a.width, bodyHeight).Render(body)}
	if footer != "" {
		rows = append(rows, FooterStyle.Render(footer))
	}
	rows = append(rows, separator, a.statusBar())
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

func (a *App) homeView(bodyHeight int) (string, string, string) {
	snap := a.feedSnap
	header := renderHeader(CompactLogo, "", a.width)
	footer := MsgFooter(snap.Pagination.TotalResults, max(snap.Page, 1), snap.Pagination.TotalPages)

	switch {
	case a.feedLoading:
		return header, renderCentered(a.width, bodyHeight, a.spinner.View()+" "+MsgLoading), footer
	case snap.ErrMessage != "":
		return header, renderCentered(a.width, bodyHeight, renderNotice(snap.ErrMessage)), ""
	case len(snap.Results) == 0:
		return header, renderCentered(a.width, bodyHeight, GetCompactBanner(MsgNoResults)), footer
	default:
		return header, a.homeList.View(), footer
	}
}

func (a *App) detailView(bodyHeight int) (string, string) {
	snap := a.detailSnap
	switch {
	case a.detailLoading:
		return renderHeader("› detalhes", "", a.width),
			renderCentered(a.width, bodyHeight, a.spinner.View()+" "+MsgLoading)
	case snap.ErrMessage != "":
		return renderHeader("› detalhes", "", a.width),
			renderCentered(a.width, bodyHeight, renderNotice(snap.ErrMessage))
	case snap.Detail == nil:
		return renderHeader("› detalhes", "", a.width), ""
	}

	subtitle := fmt.Sprintf("%s • %s", snap.Detail.Item.Kind.Label(), storage.ItemKey(snap.Kind, snap.ID))
	if snap.Favorite {
		subtitle = "♥ " + subtitle
	}
	header := renderHeader("› "+snap.Detail.Item.Title, subtitle, a.width)
	if a.recsFocused {
		return header, a.recList.View()
	}
	return header, a.viewport.View()
}

func (a *App) favoritesView(bodyHeight int) (string, string, string) {
	header := renderHeader("› favoritos", MsgFavoritesCount(a.favCount), a.width)

	var filter string
	if a.filterInput.Focused() || a.filterInput.Value() != "" {
		filter = renderInputFrame(a.filterInput.View(), a.filterInput.Focused(), a.filterInput.Width)
	}

	listBody := a.favList.View()
	if a.favCount == 0 {
		msg := MsgNoFavorites
		if a.favQuery != "" {
			msg = MsgNoResults
		}
		listBody = renderCentered(a.width, max(bodyHeight-3, 1), renderMuted(msg))
	}
	if filter == "" {
		return header, listBody, ""
	}
	return header, lipgloss.JoinVertical(lipgloss.Top, filter, listBody), ""
}

func (a *App) statusBar() string {
	if a.err != nil {
		text := fmt.Sprintf("✗ %v", a.err)
		if a.width > 10 {
			text = truncateMiddle(text, a.width-4)
		}
		return StatusBarStyle.Width(a.width).Render(StatusErrorStyle.Render(text))
	}

	helpView := a.help.ShortHelpView(a.keyHandler.ShortHelp())
	if a.status == "" {
		return StatusBarStyle.Width(a.width).Render(helpView)
	}

	style := StatusInfoStyle
	switch a.statusKind {
	case StatusSuccess:
		style = StatusSuccessStyle
	case StatusWarn:
		style = StatusWarnStyle
	case StatusError:
		style = StatusErrorStyle
	}
	status := truncateEnd(a.status, max(a.width/2, 10))
	return StatusBarStyle.Width(a.width).Render(style.Render(status) + " • " + helpView)
}
