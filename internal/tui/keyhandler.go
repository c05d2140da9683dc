package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/storage"
)

type keyMap struct {
	Quit           key.Binding
	ForceQuit      key.Binding
	Back           key.Binding
	Search         key.Binding
	Favorites      key.Binding
	ToggleFavorite key.Binding
	NextPage       key.Binding
	PrevPage       key.Binding
	Trailer        key.Binding
	Poster         key.Binding
	Open           key.Binding
	SwitchFocus    key.Binding
	Filter         key.Binding
}

func newKeyMap(cfg config.KeyConfig) keyMap {
	mod := func(k string) string {
		if cfg.Modifier == "" {
			return k
		}
		return cfg.Modifier + "+" + k
	}
	b := cfg.Bindings

	return keyMap{
		Quit:           key.NewBinding(key.WithKeys(b.Quit), key.WithHelp(b.Quit, "sair")),
		ForceQuit:      key.NewBinding(key.WithKeys("ctrl+c")),
		Back:           key.NewBinding(key.WithKeys(b.Back), key.WithHelp(b.Back, "voltar")),
		Search:         key.NewBinding(key.WithKeys(mod(b.Search)), key.WithHelp(mod(b.Search), "buscar")),
		Favorites:      key.NewBinding(key.WithKeys(mod(b.Favorites)), key.WithHelp(mod(b.Favorites), "favoritos")),
		ToggleFavorite: key.NewBinding(key.WithKeys(b.ToggleFavorite), key.WithHelp(b.ToggleFavorite, "favoritar")),
		NextPage:       key.NewBinding(key.WithKeys(b.NextPage, "]"), key.WithHelp(arrow(b.NextPage)+"/]", "próxima")),
		PrevPage:       key.NewBinding(key.WithKeys(b.PrevPage, "["), key.WithHelp(arrow(b.PrevPage)+"/[", "anterior")),
		Trailer:        key.NewBinding(key.WithKeys(mod(b.Trailer)), key.WithHelp(mod(b.Trailer), "trailer")),
		Poster:         key.NewBinding(key.WithKeys(mod(b.Poster)), key.WithHelp(mod(b.Poster), "pôster")),
		Open:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "abrir")),
		SwitchFocus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "recomendações")),
		Filter:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filtrar")),
	}
}

func arrow(k string) string {
	switch k {
	case "right":
		return "→"
	case "left":
		return "←"
	default:
		return k
	}
}

type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, keys: newKeyMap(cfg.Keys)}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, kh.keys.ForceQuit) {
		return kh.app, tea.Quit
	}

	kh.app.clearStatus()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focused()
	case ViewFavorites:
		return kh.app.filterInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if kh.app.view == ViewFavorites {
			kh.app.filterInput.Blur()
			return kh.app, nil
		}
		return kh.navigateBack()
	case "enter":
		if kh.app.view == ViewSearch {
			return kh.submitSearch()
		}
		kh.app.filterInput.Blur()
		return kh.app, nil
	case "tab", "down":
		if kh.app.view == ViewFavorites {
			kh.app.filterInput.Blur()
			return kh.app, nil
		}
	}
	return kh.delegateToTextInput(msg)
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch kh.app.view {
	case ViewSearch:
		kh.app.searchInput, cmd = kh.app.searchInput.Update(msg)
		return kh.app, cmd

	case ViewFavorites:
		prev := kh.app.favQuery
		kh.app.filterInput, cmd = kh.app.filterInput.Update(msg)
		next := strings.TrimSpace(kh.app.filterInput.Value())
		if next != prev {
			kh.app.favQuery = next
			return kh.app, tea.Batch(cmd, kh.app.filterFavorites(next))
		}
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, kh.keys.Quit):
		return kh.app, tea.Quit, true
	case key.Matches(msg, kh.keys.Back):
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case key.Matches(msg, kh.keys.Search):
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case key.Matches(msg, kh.keys.Favorites):
		model, cmd := kh.enterFavorites()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewHome:
		return kh.handleHomeKeys(msg)
	case ViewDetail:
		return kh.handleDetailKeys(msg)
	case ViewFavorites:
		return kh.handleFavoritesKeys(msg)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.NextPage):
		if a.feedLoading || !a.feed.NextPage() {
			return a, nil, true
		}
		return a, a.startFeedFetch(), true
	case key.Matches(msg, kh.keys.PrevPage):
		if a.feedLoading || !a.feed.PrevPage() {
			return a, nil, true
		}
		return a, a.startFeedFetch(), true
	case key.Matches(msg, kh.keys.ToggleFavorite):
		if it, ok := a.homeList.SelectedItem().(mediaItem); ok {
			return a, a.toggleFavorite(it.item), true
		}
		return a, nil, true
	case key.Matches(msg, kh.keys.Poster):
		if it, ok := a.homeList.SelectedItem().(mediaItem); ok {
			return a, kh.openPoster(it.item), true
		}
		return a, nil, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	d := a.detailSnap.Detail
	switch {
	case key.Matches(msg, kh.keys.ToggleFavorite):
		if d == nil {
			return a, nil, true
		}
		return a, a.toggleDetailFavorite(), true
	case key.Matches(msg, kh.keys.Trailer):
		if d == nil || d.TrailerURL == "" {
			a.setStatus(MsgNoTrailer, StatusWarn)
			return a, nil, true
		}
		return a, a.openURL(d.TrailerURL, "trailer"), true
	case key.Matches(msg, kh.keys.Poster):
		if d == nil {
			return a, nil, true
		}
		return a, kh.openPoster(d.Item), true
	case key.Matches(msg, kh.keys.SwitchFocus):
		if d != nil && len(a.recList.Items()) > 0 {
			a.recsFocused = !a.recsFocused
		}
		return a, nil, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleFavoritesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Filter):
		return a, a.filterInput.Focus(), true
	case key.Matches(msg, kh.keys.ToggleFavorite):
		if it, ok := a.favList.SelectedItem().(mediaItem); ok {
			return a, a.toggleFavorite(it.item), true
		}
		return a, nil, true
	case key.Matches(msg, kh.keys.Poster):
		if it, ok := a.favList.SelectedItem().(mediaItem); ok {
			return a, kh.openPoster(it.item), true
		}
		return a, nil, true
	}
	return a, nil, false
}

// delegateToCharm lets the focused bubble handle everything we don't
// intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd
	open := key.Matches(msg, kh.keys.Open)

	switch a.view {
	case ViewHome:
		if open {
			if it, ok := a.homeList.SelectedItem().(mediaItem); ok {
				return a, a.openDetail(it.item.Kind, it.item.ID)
			}
			return a, nil
		}
		a.homeList, cmd = a.homeList.Update(msg)
		return a, cmd

	case ViewFavorites:
		if open {
			if it, ok := a.favList.SelectedItem().(mediaItem); ok {
				return a, a.openDetail(it.item.Kind, it.item.ID)
			}
			return a, nil
		}
		a.favList, cmd = a.favList.Update(msg)
		return a, cmd

	case ViewDetail:
		if a.recsFocused {
			if open {
				if it, ok := a.recList.SelectedItem().(mediaItem); ok {
					return a, a.openDetail(it.item.Kind, it.item.ID)
				}
				return a, nil
			}
			a.recList, cmd = a.recList.Update(msg)
			return a, cmd
		}
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case ViewSearch:
		// Input blurred; any key refocuses it.
		return a, a.searchInput.Focus()

	default:
		return a, nil
	}
}

func (kh *KeyHandler) submitSearch() (tea.Model, tea.Cmd) {
	a := kh.app
	a.feed.SetQuery(a.searchInput.Value())
	a.searchInput.Blur()
	a.history = nil
	a.view = ViewHome
	return a, a.startFeedFetch()
}

// navigateBack pops the back stack. Returning to a detail page reloads it.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.view == ViewDetail && a.recsFocused {
		a.recsFocused = false
		return a, nil
	}
	if len(a.history) == 0 {
		if a.view != ViewHome {
			a.view = ViewHome
		}
		return a, nil
	}

	prev := a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]
	a.searchInput.Blur()
	a.filterInput.Blur()
	a.recsFocused = false
	a.view = prev.view

	switch prev.view {
	case ViewDetail:
		return a, a.startDetailLoad(prev.kind, prev.id)
	case ViewFavorites:
		return a, a.filterFavorites(a.favQuery)
	case ViewHome:
		a.refreshHomeMarks()
	}
	return a, nil
}

func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.view != ViewSearch {
		a.pushRoute()
	}
	a.view = ViewSearch
	a.searchInput.SetValue(a.feed.Snapshot().Query)
	a.searchInput.CursorEnd()
	return a, a.searchInput.Focus()
}

func (kh *KeyHandler) enterFavorites() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.view == ViewFavorites {
		return a, nil
	}
	a.pushRoute()
	a.view = ViewFavorites
	a.filterInput.Blur()
	return a, a.filterFavorites(a.favQuery)
}

func (kh *KeyHandler) openPoster(item storage.Item) tea.Cmd {
	if item.PosterURL == "" {
		kh.app.setStatus(MsgNoPoster, StatusWarn)
		return nil
	}
	return kh.app.openURL(item.PosterURL, "pôster")
}

// ShortHelp lists the bindings shown in the status bar for the current view.
func (kh *KeyHandler) ShortHelp() []key.Binding {
	k := kh.keys
	switch kh.app.view {
	case ViewHome:
		return []key.Binding{k.Open, k.Search, k.Favorites, k.ToggleFavorite, k.PrevPage, k.NextPage, k.Quit}
	case ViewDetail:
		if kh.app.recsFocused {
			return []key.Binding{k.Open, k.Back}
		}
		return []key.Binding{k.ToggleFavorite, k.Trailer, k.Poster, k.SwitchFocus, k.Back}
	case ViewFavorites:
		return []key.Binding{k.Open, k.Filter, k.ToggleFavorite, k.Search, k.Back}
	case ViewSearch:
		return []key.Binding{
			key.NewBinding(key.WithHelp("enter", "buscar")),
			key.NewBinding(key.WithHelp("esc", "cancelar")),
		}
	default:
		return nil
	}
}
