package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type Action string

type Binding struct {
	Action Action
	Keys   []string
	Help   string
	Scopes []string
}

// KeyRegistry resolves key names to actions per scope, falling back to the
// global scope.
type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const (
	scopeGlobal      = "global"
	scopePortalInput = "portal_input"
	scopePortal      = "portal"
	scopeLoading     = "loading"
	scopeScreen      = "screen"
)

const (
	actionQuit        Action = "quit"
	actionGoto        Action = "goto"
	actionNextScreen  Action = "next_screen"
	actionPrevScreen  Action = "prev_screen"
	actionSubmit      Action = "submit"
	actionToggleMode  Action = "toggle_mode"
	actionFocusInput  Action = "focus_input"
	actionBlurInput   Action = "blur_input"
	actionCancelScan  Action = "cancel_scan"
	actionAcceptMatch Action = "accept_suggestion"
)

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}

	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(Binding{Action: action, Keys: keys, Help: help, Scopes: []string{scope}})
	}

	// Global fallback lookup.
	reg(scopeGlobal, actionGoto, []string{"1-5", "1", "2", "3", "4", "5"}, "screens")
	reg(scopeGlobal, actionNextScreen, []string{"]", "l", "right"}, "next")
	reg(scopeGlobal, actionPrevScreen, []string{"[", "h", "left"}, "prev")
	reg(scopeGlobal, actionFocusInput, []string{"/"}, "search")
	reg(scopeGlobal, actionQuit, []string{"q", "ctrl+c"}, "quit")

	// Typing into the query box: only non-printable keys are bound.
	reg(scopePortalInput, actionSubmit, []string{"enter"}, "ignite")
	reg(scopePortalInput, actionToggleMode, []string{"tab"}, "mode")
	reg(scopePortalInput, actionAcceptMatch, []string{"ctrl+s"}, "use suggestion")
	reg(scopePortalInput, actionBlurInput, []string{"esc"}, "leave input")
	reg(scopePortalInput, actionQuit, []string{"ctrl+c"}, "quit")

	reg(scopePortal, actionFocusInput, []string{"enter", "i", "/"}, "edit query")
	reg(scopePortal, actionToggleMode, []string{"tab"}, "mode")

	reg(scopeLoading, actionCancelScan, []string{"esc", "x"}, "cancel scan")

	reg(scopeScreen, actionFocusInput, []string{"/"}, "new search")

	return r
}

func (r *KeyRegistry) Register(b Binding) {
	if r == nil {
		return
	}
	keys := normalizeKeyList(b.Keys)
	if len(keys) == 0 {
		return
	}
	for _, scope := range b.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		if _, ok := r.indexByScope[scope]; !ok {
			r.indexByScope[scope] = make(map[string]*Binding)
		}
		nb := &Binding{Action: b.Action, Keys: keys, Help: b.Help, Scopes: []string{scope}}
		r.bindingsByScope[scope] = append(r.bindingsByScope[scope], nb)
		for _, k := range keys {
			r.indexByScope[scope][k] = nb
		}
	}
}

func (r *KeyRegistry) BindingsForScope(scope string) []Binding {
	if r == nil {
		return nil
	}
	items := r.bindingsByScope[scope]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

// Lookup finds the binding for keyName in scope, then in the global scope.
// Scopes listed in isolated never fall back.
func (r *KeyRegistry) Lookup(keyName, scope string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	keyName = normalizeKeyName(keyName)
	if b := r.lookupInScope(keyName, scope); b != nil {
		return b
	}
	if scope != scopeGlobal && !isolated[scope] {
		return r.lookupInScope(keyName, scopeGlobal)
	}
	return nil
}

// isolated scopes capture printable keys for text entry.
var isolated = map[string]bool{scopePortalInput: true}

func (r *KeyRegistry) HelpBindings(scope string) []key.Binding {
	items := r.BindingsForScope(scope)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
	}
	return out
}

func (r *KeyRegistry) lookupInScope(keyName, scope string) *Binding {
	if scope == "" {
		return nil
	}
	lookup, ok := r.indexByScope[scope]
	if !ok {
		return nil
	}
	return lookup[keyName]
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		return trimmed
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	return s
}
