package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"

	"github.com/jask/horaculo/internal/session"
	"github.com/jask/horaculo/internal/signal"
)

// Entropy above this marks the stress reading as inconclusive.
const inconclusiveEntropy = 1.8

// maxFeed caps the crypto signal feed.
const maxFeed = 8

var screenTitles = map[session.ScreenID]string{
	session.ScreenPortal:       "Portal",
	session.ScreenArbitrage:    "Arbitrage Radar",
	session.ScreenIntelligence: "Intelligence",
	session.ScreenStress:       "Stress & Sentiment",
	session.ScreenCrypto:       "Crypto Satellite",
}

// renderResultScreen draws one of the four result screens. A missing slice
// renders a placeholder.
func renderResultScreen(screen session.ScreenID, result session.ResultPayload, width int) string {
	if result == nil {
		return renderMissing(screen, nil)
	}
	raw, err := result.Slice(screen)
	if err != nil {
		return renderMissing(screen, err)
	}
	switch screen {
	case session.ScreenArbitrage:
		return renderArbitrage(raw, width)
	case session.ScreenIntelligence:
		return renderIntelligence(raw, width)
	case session.ScreenStress:
		return renderStress(raw, width)
	case session.ScreenCrypto:
		return renderCrypto(raw, width)
	}
	return renderMissing(screen, &session.MissingDataError{Screen: screen})
}

// renderMissing is the neutral placeholder. A nil err means no search has
// completed yet.
func renderMissing(screen session.ScreenID, err error) string {
	title := titleStyle.Render(strings.ToUpper(screenTitles[screen]))
	msg := "Awaiting data. Run a search from the portal."
	var missing *session.MissingDataError
	if errors.As(err, &missing) {
		msg = fmt.Sprintf("No %s data in the last result. Run a search from the portal.", strings.ToLower(screenTitles[screen]))
	}
	return title + "\n\n" + mutedStyle.Render(msg)
}

// first returns the first path present in doc. Backend and bundled payloads
// name some fields differently.
func first(doc gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := doc.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func bar(v float64, width int, color lipgloss.Color) string {
	if width < 10 {
		width = 10
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p := progress.New(progress.WithSolidFill(string(color)), progress.WithoutPercentage(), progress.WithWidth(width))
	return p.ViewAs(v)
}

func meter(label string, v float64, width int) string {
	c := conflictColor(v)
	head := labelStyle.Render(label) + "  " + lipgloss.NewStyle().Foreground(c).Bold(true).Render(percent(v))
	return head + "\n" + bar(v, width, c)
}

func renderArbitrage(raw json.RawMessage, width int) string {
	doc := gjson.ParseBytes(raw)
	var b strings.Builder
	b.WriteString(titleStyle.Render("ARBITRAGE RADAR"))
	b.WriteString("\n\n")

	intensity := first(doc, "conflict_intensity", "intensity_score").Float()
	b.WriteString(meter("CONFLICT INTENSITY", intensity, width-4))
	b.WriteString("\n\n")

	if first(doc, "eden.detected", "eden_detected").Bool() {
		src := first(doc, "eden.source", "eden_source").String()
		b.WriteString(warnStyle.Bold(true).Render("EDEN SIGNAL: " + src))
	} else {
		b.WriteString(mutedStyle.Render("No eden signal."))
	}
	b.WriteString("\n\n")

	points := doc.Get("points").Array()
	if len(points) == 0 {
		b.WriteString(mutedStyle.Render("No narrative points."))
		return b.String()
	}
	const srcW, sentW, credW = 18, 10, 12
	labelW := width - srcW - sentW - credW - 6
	header := padRight("SOURCE", srcW) + padRight("SENTIMENT", sentW) + padRight("CREDIBILITY", credW)
	if labelW > 8 {
		header += "LABEL"
	}
	b.WriteString(tableHeaderStyle.Render(header))
	for _, p := range points {
		sent := p.Get("sentiment").Float()
		cred := first(p, "credibility", "y").Float()
		line := padRight(truncate(p.Get("source").String(), srcW-1), srcW) +
			lipgloss.NewStyle().Foreground(sentimentColor(sent)).Render(padRight(signed(sent), sentW)) +
			padRight(fixed(cred, 2), credW)
		if labelW > 8 {
			line += mutedStyle.Render(truncate(p.Get("label").String(), labelW))
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

func renderIntelligence(raw json.RawMessage, width int) string {
	doc := gjson.ParseBytes(raw)
	var b strings.Builder
	b.WriteString(titleStyle.Render("INTELLIGENCE"))
	b.WriteString("\n\n")

	coord := first(doc, "coordination", "coordination_score").Float()
	b.WriteString(meter("COORDINATION", coord, width-4))
	b.WriteString("\n\n")

	clusters := doc.Get("clusters").Array()
	if len(clusters) == 0 {
		b.WriteString(mutedStyle.Render("No clusters detected."))
		return b.String()
	}
	b.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%d CLUSTERS", len(clusters))))
	for _, c := range clusters {
		var sources []string
		for _, s := range c.Get("sources").Array() {
			sources = append(sources, s.String())
		}
		avg := c.Get("sentiment_avg").Float()
		line := fmt.Sprintf("#%-3s %s  %s",
			c.Get("id").String(),
			lipgloss.NewStyle().Foreground(sentimentColor(avg)).Render(signed(avg)),
			truncate(strings.Join(sources, ", "), max(width-16, 10)))
		b.WriteString("\n" + line)
	}
	return b.String()
}

func renderStress(raw json.RawMessage, _ int) string {
	doc := gjson.ParseBytes(raw)
	var b strings.Builder
	b.WriteString(titleStyle.Render("STRESS & SENTIMENT"))
	b.WriteString("\n\n")

	mood := doc.Get("mood").String()
	if mood == "" {
		mood = "Unknown"
	}
	moodColor := colorSubtext0
	switch strings.ToLower(mood) {
	case "fear", "panic", "extreme fear":
		moodColor = colorError
	case "greed", "euphoria", "extreme greed":
		moodColor = colorSuccess
	}
	b.WriteString(labelStyle.Render("MOOD     ") + lipgloss.NewStyle().Foreground(moodColor).Bold(true).Render(strings.ToUpper(mood)))
	b.WriteString("\n")

	entropy := doc.Get("entropy").Float()
	b.WriteString(labelStyle.Render("ENTROPY  ") + valueStyle.Render(fixed(entropy, 2)))
	if entropy > inconclusiveEntropy {
		b.WriteString("  " + warnStyle.Render("INCONCLUSIVE"))
	}
	b.WriteString("\n")
	if a := doc.Get("asymmetry"); a.Exists() {
		b.WriteString(labelStyle.Render("ASYMMETRY") + " " + valueStyle.Render(a.String()) + "\n")
	}
	b.WriteString("\n")

	if doc.Get("is_trap").Bool() {
		b.WriteString(errorStyle.Bold(true).Render("TRAP DETECTED: consensus looks manufactured."))
	} else {
		b.WriteString(infoStyle.Render("No trap pattern."))
	}
	if doc.Get("is_crowded").Bool() {
		b.WriteString("\n" + warnStyle.Render("Crowded trade."))
	}
	return b.String()
}

// cryptoSignal reads action_signal, or derives one from metrics when absent.
func cryptoSignal(doc gjson.Result) (signal.Signal, string) {
	if as := doc.Get("action_signal"); as.IsObject() {
		icon, ok := signal.ParseIcon(as.Get("icon").String())
		glyph := signal.FallbackGlyph
		if ok {
			glyph = icon.Glyph()
		}
		return signal.Signal{Code: as.Get("code").String(), Color: as.Get("color").String(), Icon: icon}, glyph
	}
	m := doc.Get("metrics")
	if !m.IsObject() {
		return signal.NoSignal, signal.NoSignal.Icon.Glyph()
	}
	conflict := m.Get("conflict_intensity").Float()
	sentiment := m.Get("sentiment_gap").Float()
	panicking := signal.IsPanic(conflict, sentiment)
	if p := m.Get("is_panic"); p.Exists() {
		panicking = p.Bool()
	}
	s := signal.Classify(conflict, sentiment, panicking)
	return s, s.Icon.Glyph()
}

func renderCrypto(raw json.RawMessage, width int) string {
	doc := gjson.ParseBytes(raw)
	var b strings.Builder
	asset := doc.Get("asset").String()
	b.WriteString(titleStyle.Render("SATELLITE: " + strings.ToUpper(asset)))
	b.WriteString("  " + mutedStyle.Render("LIVE FEED RSS+ONCHAIN"))
	b.WriteString("\n\n")

	sig, glyph := cryptoSignal(doc)
	color := lipgloss.Color(sig.Color)
	if sig.Color == "" {
		color = colorText
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(color).
		Foreground(color).
		Bold(true).
		Padding(0, 2).
		Render(glyph + "  " + sig.Code)
	b.WriteString(box + "\n" + mutedStyle.Render("ACTION SIGNAL") + "\n\n")

	if m := doc.Get("metrics"); m.IsObject() {
		conflict := m.Get("conflict_intensity").Float()
		head := labelStyle.Render("NARRATIVE CONFLICT (WHALES vs RETAIL)") + "  " +
			lipgloss.NewStyle().Foreground(color).Bold(true).Render(percent(conflict))
		b.WriteString(head + "\n" + bar(conflict, width-4, color) + "\n")
		gap := m.Get("sentiment_gap").Float()
		b.WriteString(labelStyle.Render("SENTIMENT ") +
			lipgloss.NewStyle().Foreground(sentimentColor(gap)).Render(signed(gap)) + "\n\n")
	}

	var chips []string
	for _, v := range doc.Get("hard_data.monetary").Array() {
		chips = append(chips, chipStyle.Render(v.String()))
	}
	for _, v := range doc.Get("hard_data.percentages").Array() {
		chips = append(chips, chipStyle.Foreground(colorSuccess).Render(v.String()))
	}
	if len(chips) > 0 {
		b.WriteString(strings.Join(chips, " ") + "\n\n")
	}

	b.WriteString(tableHeaderStyle.Render("SIGNALS DETECTED"))
	feed := doc.Get("signals").Array()
	if len(feed) == 0 {
		b.WriteString("\n" + mutedStyle.Render("No signals."))
	}
	for i, s := range feed {
		if i == maxFeed {
			break
		}
		src := lipgloss.NewStyle().Foreground(colorMauve).Bold(true).Render(strings.ToUpper(s.Get("source").String()))
		b.WriteString("\n" + src + "\n  " + truncate(s.Get("text").String(), max(width-4, 10)))
	}
	return b.String()
}

// renderPortalResult summarises screen_portal under the search form.
func renderPortalResult(result session.ResultPayload, width int) string {
	raw, err := result.Slice(session.ScreenPortal)
	if err != nil {
		return ""
	}
	doc := gjson.ParseBytes(raw)
	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render("LAST ANALYSIS"))
	if s := doc.Get("summary").String(); s != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Width(max(width-2, 20)).Render(s))
	}
	var meta []string
	if t := first(doc, "stats.time", "meta.execution_time").String(); t != "" {
		meta = append(meta, "time "+t)
	}
	if n := doc.Get("meta.sources_count"); n.Exists() {
		meta = append(meta, fmt.Sprintf("%d sources", n.Int()))
	}
	if len(meta) > 0 {
		b.WriteString("\n" + mutedStyle.Render(strings.Join(meta, " · ")))
	}
	return b.String()
}
