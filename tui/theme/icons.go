package theme

import "os"

// Nerd Font icons
const (
	nerdIconSuccess = "󰄬" // md-check (U+F012C)
	nerdIconError   = "" // cod-error (U+EA87)
	nerdIconWarning = "" // fa-warning (U+F071)
	nerdIconInfo    = "󰋼" // md-information (U+F02FC)
	nerdIconRunning = "" // fa-refresh (U+F021)
	nerdIconSelect  = "󰱒" // md-checkbox_outline (U+F0C52)
	nerdIconArrow   = "󰁔" // md-arrow_right (U+F0054)
	nerdIconBullet  = "" // oct-dot_fill (U+F444)
	nerdIconShell   = "" // seti-shell (U+E691)
	nerdIconLock    = "" // fa-lock (U+F023)
	nerdIconFolder  = "" // fa-folder (U+F07B)
)

// ASCII fallback icons
const (
	asciiIconSuccess = "✓"
	asciiIconError   = "✗"
	asciiIconWarning = "⚠"
	asciiIconInfo    = "ℹ"
	asciiIconRunning = "◐"
	asciiIconSelect  = "▶"
	asciiIconArrow   = "→"
	asciiIconBullet  = "•"
	asciiIconShell   = "$"
	asciiIconLock    = "[p]"
	asciiIconFolder  = "[g]"
)

var (
	IconSuccess string
	IconError   string
	IconWarning string
	IconInfo    string
	IconRunning string
	IconSelect  string
	IconArrow   string
	IconBullet  string
	IconShell   string
	IconPrivate string
	IconGroup   string
)

func init() {
	useASCII := os.Getenv("JUSTRUN_ICONS") == "ascii"
	if !useASCII && os.Getenv("JUSTRUN_ICONS") == "" {
		useASCII = loadTUIConfig().Icons == "ascii"
	}

	if useASCII {
		IconSuccess = asciiIconSuccess
		IconError = asciiIconError
		IconWarning = asciiIconWarning
		IconInfo = asciiIconInfo
		IconRunning = asciiIconRunning
		IconSelect = asciiIconSelect
		IconArrow = asciiIconArrow
		IconBullet = asciiIconBullet
		IconShell = asciiIconShell
		IconPrivate = asciiIconLock
		IconGroup = asciiIconFolder
		return
	}

	IconSuccess = nerdIconSuccess
	IconError = nerdIconError
	IconWarning = nerdIconWarning
	IconInfo = nerdIconInfo
	IconRunning = nerdIconRunning
	IconSelect = nerdIconSelect
	IconArrow = nerdIconArrow
	IconBullet = nerdIconBullet
	IconShell = nerdIconShell
	IconPrivate = nerdIconLock
	IconGroup = nerdIconFolder
}
