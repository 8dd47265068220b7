// internal/fallback/palette.go
package fallback

import (
	"fmt"
	"strings"

	"pagegen-workers/internal/models"
)

type palette struct {
	Background string
	Surface    string
	Primary    string
	Accent     string
	Text       string
	Muted      string
	Font       string
	Radius     string
	Shadow     string
}

const (
	fontSans  = "'Inter', 'Segoe UI', Arial, sans-serif"
	fontSerif = "Georgia, 'Times New Roman', serif"
	fontMono  = "'Courier New', monospace"
)

var palettes = map[string]palette{
	models.StyleModern:        {"#f4f6fb", "#ffffff", "#4f46e5", "#06b6d4", "#111827", "#6b7280", fontSans, "14px", "0 20px 45px rgba(17,24,39,0.12)"},
	models.StyleClassic:       {"#f5f0e6", "#fffdf8", "#7c2d12", "#b45309", "#292524", "#78716c", fontSerif, "4px", "0 8px 20px rgba(41,37,36,0.15)"},
	models.StyleCreative:      {"#fff1f2", "#ffffff", "#db2777", "#f59e0b", "#1f2937", "#6b7280", fontSans, "24px", "0 18px 40px rgba(219,39,119,0.25)"},
	models.StyleProfessional:  {"#eef2f7", "#ffffff", "#1e3a8a", "#0ea5e9", "#0f172a", "#64748b", fontSans, "8px", "0 10px 30px rgba(15,23,42,0.12)"},
	models.StyleDark:          {"#0b0f19", "#151b2c", "#6366f1", "#22d3ee", "#e5e7eb", "#9ca3af", fontSans, "14px", "0 20px 50px rgba(0,0,0,0.55)"},
	models.StyleLight:         {"#ffffff", "#f9fafb", "#2563eb", "#10b981", "#111827", "#6b7280", fontSans, "12px", "0 6px 18px rgba(17,24,39,0.08)"},
	models.StyleCyberpunk:     {"#0d0221", "#1a0b3b", "#ff2a6d", "#05d9e8", "#f5f5f5", "#b8b8d1", fontMono, "2px", "0 0 25px rgba(5,217,232,0.55)"},
	models.StyleGlassmorphism: {"#667eea", "rgba(255,255,255,0.18)", "#ffffff", "#fbc2eb", "#ffffff", "#e0e7ff", fontSans, "20px", "0 8px 32px rgba(31,38,135,0.37)"},
	models.StyleNeumorphism:   {"#e0e5ec", "#e0e5ec", "#5b6cff", "#a3b1c6", "#44476a", "#7b7e9a", fontSans, "18px", "9px 9px 16px #a3b1c6, -9px -9px 16px #ffffff"},
	models.StyleRetro:         {"#fdf0d5", "#fff8e7", "#c1121f", "#003049", "#3d2c1e", "#7f5539", fontSerif, "0", "6px 6px 0 #003049"},
	models.StyleMinimalist:    {"#ffffff", "#ffffff", "#111111", "#555555", "#111111", "#777777", fontSans, "0", "none"},
}

var agriculturePalette = palette{"#f1f8e9", "#ffffff", "#2e7d32", "#f9a825", "#1b3a1b", "#5d7b5d", fontSans, "16px", "0 14px 36px rgba(46,125,50,0.2)"}

func paletteFor(style string) palette {
	if p, ok := palettes[style]; ok {
		return p
	}
	return palettes[models.StyleModern]
}

func buildCSS(p palette, style string, animated, responsive bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `* { box-sizing: border-box; margin: 0; padding: 0; }
body { min-height: 100vh; font-family: %s; background: %s; color: %s; display: flex; align-items: center; justify-content: center; padding: 24px; }
.page { width: 100%%; max-width: 960px; display: flex; flex-direction: column; align-items: center; gap: 32px; }
.card, .hero, .highlight { background: %s; border-radius: %s; box-shadow: %s; padding: 40px; }
.card { width: 100%%; max-width: 420px; }
.hero { text-align: center; width: 100%%; }
.brand { display: flex; align-items: center; gap: 12px; }
.icon { font-size: 28px; }
h1 { font-size: 28px; }
.subheading { color: %s; margin: 8px 0 24px; }
.tabs { display: flex; gap: 8px; margin-bottom: 20px; }
.tab { flex: 1; padding: 10px; border: 1px solid %s; background: transparent; color: %s; border-radius: %s; cursor: pointer; }
.tab.active { background: %s; color: %s; }
.form { display: none; flex-direction: column; gap: 10px; }
.form.active { display: flex; }
input[type=text], input[type=email], input[type=password] { padding: 12px 14px; border: 1px solid %s; border-radius: %s; background: transparent; color: %s; font: inherit; }
.row { display: flex; justify-content: space-between; align-items: center; font-size: 14px; }
.link { color: %s; text-decoration: none; }
.primary { display: inline-block; margin-top: 8px; padding: 12px 18px; border: none; border-radius: %s; background: %s; color: %s; font-weight: 600; text-decoration: none; cursor: pointer; }
.divider { text-align: center; color: %s; margin: 20px 0 12px; font-size: 13px; }
.social { display: flex; gap: 10px; }
.social-btn { flex: 1; text-align: center; padding: 10px; border: 1px solid %s; border-radius: %s; color: %s; text-decoration: none; }
.highlights { display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; width: 100%%; }
.highlight h2 { font-size: 18px; }
`,
		p.Font, p.Background, p.Text,
		p.Surface, p.Radius, p.Shadow,
		p.Muted,
		p.Muted, p.Text, p.Radius,
		p.Primary, contrastText(style),
		p.Muted, p.Radius, p.Text,
		p.Accent,
		p.Radius, p.Primary, contrastText(style),
		p.Muted,
		p.Muted, p.Radius, p.Text,
	)

	if style == models.StyleGlassmorphism {
		b.WriteString(".card, .hero, .highlight { backdrop-filter: blur(12px); -webkit-backdrop-filter: blur(12px); border: 1px solid rgba(255,255,255,0.3); }\n")
		b.WriteString("body { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); }\n")
	}
	if style == models.StyleCyberpunk {
		fmt.Fprintf(&b, ".card, .hero { border: 1px solid %s; }\nh1 { text-shadow: 0 0 8px %s; }\n", p.Accent, p.Primary)
	}
	if animated {
		b.WriteString(`@keyframes rise { from { opacity: 0; transform: translateY(16px); } to { opacity: 1; transform: translateY(0); } }
.animated .card, .animated .hero, .animated .highlight { animation: rise 0.6s ease-out both; }
.primary, .social-btn, .tab { transition: transform 0.2s ease, opacity 0.2s ease; }
.primary:hover, .social-btn:hover { transform: translateY(-2px); opacity: 0.92; }
`)
	}
	if responsive {
		b.WriteString(`@media (max-width: 640px) {
  body { padding: 12px; }
  .card, .hero, .highlight { padding: 24px; }
  .highlights { grid-template-columns: 1fr; }
  .social { flex-direction: column; }
}
`)
	}
	return b.String()
}

func contrastText(style string) string {
	if style == models.StyleGlassmorphism {
		return "#4c1d95"
	}
	return "#ffffff"
}
