// Package i18n selects the language of user-facing messages from the
// caller's accept-language value.
package i18n

import "golang.org/x/text/language"

type Key string

const (
	SettingsSaved         Key = "settings_saved"
	SettingsSaveFailed    Key = "settings_save_failed"
	SettingsNoConnection  Key = "settings_no_connection"
	SettingsDeleted       Key = "settings_deleted"
	SettingsDeleteFailed  Key = "settings_delete_failed"
	AddressbookSynced     Key = "addressbook_synced"
	AddressbookSyncFailed Key = "addressbook_sync_failed"
)

// supported[0] is the fallback.
var supported = []language.Tag{language.English, language.German}

var matcher = language.NewMatcher(supported)

var catalog = map[language.Tag]map[Key]string{
	language.English: {
		SettingsSaved:         "CardDAV server saved.",
		SettingsSaveFailed:    "The CardDAV server could not be saved.",
		SettingsNoConnection:  "Could not connect to the CardDAV server. Check URL, username and password.",
		SettingsDeleted:       "CardDAV server deleted.",
		SettingsDeleteFailed:  "The CardDAV server could not be deleted.",
		AddressbookSynced:     "Address book synchronized.",
		AddressbookSyncFailed: "Address book synchronization failed.",
	},
	language.German: {
		SettingsSaved:         "CardDAV-Server gespeichert.",
		SettingsSaveFailed:    "Der CardDAV-Server konnte nicht gespeichert werden.",
		SettingsNoConnection:  "Keine Verbindung zum CardDAV-Server. Bitte URL, Benutzername und Passwort prüfen.",
		SettingsDeleted:       "CardDAV-Server gelöscht.",
		SettingsDeleteFailed:  "Der CardDAV-Server konnte nicht gelöscht werden.",
		AddressbookSynced:     "Adressbuch synchronisiert.",
		AddressbookSyncFailed: "Synchronisation des Adressbuchs fehlgeschlagen.",
	},
}

// Match returns the supported language closest to an Accept-Language value.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// Text returns the message for key in lang, falling back to English and
// finally to the key itself.
func Text(lang language.Tag, key Key) string {
	if msg, ok := catalog[lang][key]; ok {
		return msg
	}
	if msg, ok := catalog[supported[0]][key]; ok {
		return msg
	}
	return string(key)
}

// Localize is Match followed by Text.
func Localize(acceptLanguage string, key Key) string {
	return Text(Match(acceptLanguage), key)
}
