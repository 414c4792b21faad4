// Package i18n provides localized strings for key names, the tray menu and
// notifications.
package i18n

import (
	"sync"

	"golang.org/x/text/language"
)

// Language represents a UI language.
type Language string

const (
	EN Language = "en"
	FR Language = "fr"
	DE Language = "de"
)

var (
	mu      sync.RWMutex
	current = EN
)

var supported = []language.Tag{language.English, language.French, language.German}

var matcher = language.NewMatcher(supported)

var translations = map[Language]map[string]string{
	EN: {
		// Modifiers
		"key_control":  "Control",
		"key_option":   "Option",
		"key_shift":    "Shift",
		"key_command":  "Command",
		"key_function": "Function",
		"key_joiner":   " + ",

		// Special keys
		"key_left_arrow":     "Left Arrow",
		"key_right_arrow":    "Right Arrow",
		"key_up_arrow":       "Up Arrow",
		"key_down_arrow":     "Down Arrow",
		"key_return":         "Return",
		"key_enter":          "Enter",
		"key_tab":            "Tab",
		"key_escape":         "Escape",
		"key_delete":         "Delete",
		"key_forward_delete": "Forward Delete",
		"key_home":           "Home",
		"key_end":            "End",
		"key_page_up":        "Page Up",
		"key_page_down":      "Page Down",
		"key_clear":          "Clear",
		"key_help":           "Help",
		"key_space":          "Space",
		"key_no_break_space": "No-Break Space",
		"key_function_n":     "F%d",

		// Tray
		"tray_title":         "HotKeyKit",
		"tray_tooltip":       "HotKeyKit - global shortcuts",
		"tray_hotkeys":       "Shortcuts",
		"tray_none":          "No shortcuts registered",
		"tray_reload":        "Reload configuration",
		"tray_autostart":     "Start at login",
		"tray_quit":          "Quit",
		"tray_open":          "Show shortcuts...",
		"tray_layout":        "Layout: %s",
		"tray_accessory":     "Accessory: %s",
		"tray_notifications": "Notifications",

		// Notifications
		"notify_register_failed": "Shortcut already in use",
		"notify_action_failed":   "Shortcut action failed",
		"notify_layout_changed":  "Keyboard layout changed",
	},

	FR: {
		"key_control":  "Contrôle",
		"key_option":   "Option",
		"key_shift":    "Majuscule",
		"key_command":  "Commande",
		"key_function": "Fonction",
		"key_joiner":   " + ",

		"key_left_arrow":     "Flèche gauche",
		"key_right_arrow":    "Flèche droite",
		"key_up_arrow":       "Flèche haut",
		"key_down_arrow":     "Flèche bas",
		"key_return":         "Retour",
		"key_enter":          "Entrée",
		"key_tab":            "Tabulation",
		"key_escape":         "Échappement",
		"key_delete":         "Suppression",
		"key_forward_delete": "Suppression avant",
		"key_home":           "Début",
		"key_end":            "Fin",
		"key_page_up":        "Page précédente",
		"key_page_down":      "Page suivante",
		"key_clear":          "Effacer",
		"key_help":           "Aide",
		"key_space":          "Espace",
		"key_no_break_space": "Espace insécable",
		"key_function_n":     "F%d",

		"tray_title":         "HotKeyKit",
		"tray_tooltip":       "HotKeyKit - raccourcis globaux",
		"tray_hotkeys":       "Raccourcis",
		"tray_none":          "Aucun raccourci enregistré",
		"tray_reload":        "Recharger la configuration",
		"tray_autostart":     "Lancer à l'ouverture de session",
		"tray_quit":          "Quitter",
		"tray_open":          "Afficher les raccourcis...",
		"tray_layout":        "Disposition : %s",
		"tray_accessory":     "Accessoire : %s",
		"tray_notifications": "Notifications",

		"notify_register_failed": "Raccourci déjà utilisé",
		"notify_action_failed":   "Échec de l'action du raccourci",
		"notify_layout_changed":  "Disposition du clavier modifiée",
	},

	DE: {
		"key_control":  "Control",
		"key_option":   "Wahltaste",
		"key_shift":    "Umschalttaste",
		"key_command":  "Befehlstaste",
		"key_function": "Funktionstaste",
		"key_joiner":   " + ",

		"key_left_arrow":     "Pfeil nach links",
		"key_right_arrow":    "Pfeil nach rechts",
		"key_up_arrow":       "Pfeil nach oben",
		"key_down_arrow":     "Pfeil nach unten",
		"key_return":         "Zeilenschalter",
		"key_enter":          "Eingabetaste",
		"key_tab":            "Tabulator",
		"key_escape":         "Escape",
		"key_delete":         "Rückschritt",
		"key_forward_delete": "Entfernen",
		"key_home":           "Pos1",
		"key_end":            "Ende",
		"key_page_up":        "Bild auf",
		"key_page_down":      "Bild ab",
		"key_clear":          "Löschen",
		"key_help":           "Hilfe",
		"key_space":          "Leertaste",
		"key_no_break_space": "Geschütztes Leerzeichen",
		"key_function_n":     "F%d",

		"tray_title":         "HotKeyKit",
		"tray_tooltip":       "HotKeyKit - globale Tastenkürzel",
		"tray_hotkeys":       "Tastenkürzel",
		"tray_none":          "Keine Tastenkürzel registriert",
		"tray_reload":        "Konfiguration neu laden",
		"tray_autostart":     "Bei Anmeldung starten",
		"tray_quit":          "Beenden",
		"tray_open":          "Tastenkürzel anzeigen...",
		"tray_layout":        "Belegung: %s",
		"tray_accessory":     "Zubehör: %s",
		"tray_notifications": "Mitteilungen",

		"notify_register_failed": "Tastenkürzel bereits belegt",
		"notify_action_failed":   "Aktion des Tastenkürzels fehlgeschlagen",
		"notify_layout_changed":  "Tastaturbelegung geändert",
	},
}

// T returns the translation for the given key, falling back to English and
// then to the key itself.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if s, ok := translations[current][key]; ok {
		return s
	}
	if s, ok := translations[EN][key]; ok {
		return s
	}
	return key
}

// SetLanguage sets the current UI language.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	current = lang
}

// GetLanguage returns the current UI language.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Match picks the closest supported language for a BCP 47 tag such as
// "fr-CA" or a POSIX locale like "de_DE.UTF-8". Unknown tags yield EN.
func Match(tag string) Language {
	t, _, err := language.ParseAcceptLanguage(normalizeLocale(tag))
	if err != nil || len(t) == 0 {
		return EN
	}
	_, idx, conf := matcher.Match(t...)
	if conf == language.No {
		return EN
	}
	switch supported[idx] {
	case language.French:
		return FR
	case language.German:
		return DE
	default:
		return EN
	}
}

// AvailableLanguages returns the supported languages.
func AvailableLanguages() []Language {
	return []Language{EN, FR, DE}
}

// LanguageName returns the display name of a language.
func LanguageName(lang Language) string {
	switch lang {
	case EN:
		return "English"
	case FR:
		return "Français"
	case DE:
		return "Deutsch"
	default:
		return string(lang)
	}
}

// normalizeLocale strips the encoding suffix of a POSIX locale and turns
// underscores into hyphens.
func normalizeLocale(s string) string {
	for i, r := range s {
		if r == '.' || r == '@' {
			s = s[:i]
			break
		}
	}
	b := []byte(s)
	for i := range b {
		if b[i] == '_' {
			b[i] = '-'
		}
	}
	return string(b)
}
