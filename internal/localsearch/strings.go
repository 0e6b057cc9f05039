package localsearch

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	keySearchResults         = "SEARCH_RESULTS"
	keySearchResultsLocation = "SEARCH_RESULTS_LOCATION"
	keyDefaultSearchQuery    = "DEFAULT_SEARCH_QUERY"
	keySearchBarPlaceholder  = "SEARCH_BAR_PLACEHOLDER"
	keySearchErrorTitle      = "SEARCH_RESULTS_ERROR_TITLE"
	keyLocationAlertTitle    = "LOCATION_SERVICES_ALERT_TITLE"
	keyLocationDenied        = "LOCATION_SERVICES_DENIED"
	keyLocationRestricted    = "LOCATION_SERVICES_RESTRICTED"
	keyLocationServicesOff   = "LOCATION_SERVICES_DISABLED"
	keyButtonOK              = "BUTTON_OK"
	keyButtonSettings        = "BUTTON_SETTINGS"
	keyButtonCancel          = "BUTTON_CANCEL"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		keySearchResults:         "Search Results",
		keySearchResultsLocation: "Search Results near %s",
		keyDefaultSearchQuery:    "coffee",
		keySearchBarPlaceholder:  "Search for a place",
		keySearchErrorTitle:      "Could Not Complete Search",
		keyLocationAlertTitle:    "Location Services",
		keyLocationDenied:        "Location access is denied. Allow access in Settings to search near you.",
		keyLocationRestricted:    "Location access is restricted on this device.",
		keyLocationServicesOff:   "Location Services are turned off. Turn them on in Settings to search near you.",
		keyButtonOK:              "OK",
		keyButtonSettings:        "Settings",
		keyButtonCancel:          "Cancel",
	},
	language.German: {
		keySearchResults:         "Suchergebnisse",
		keySearchResultsLocation: "Suchergebnisse in der Nähe von %s",
		keyDefaultSearchQuery:    "Kaffee",
		keySearchBarPlaceholder:  "Nach einem Ort suchen",
		keySearchErrorTitle:      "Suche fehlgeschlagen",
		keyLocationAlertTitle:    "Ortungsdienste",
		keyLocationDenied:        "Der Standortzugriff ist verweigert. Erlaube den Zugriff in den Einstellungen.",
		keyLocationRestricted:    "Der Standortzugriff ist auf diesem Gerät eingeschränkt.",
		keyLocationServicesOff:   "Die Ortungsdienste sind deaktiviert. Aktiviere sie in den Einstellungen.",
		keyButtonOK:              "OK",
		keyButtonSettings:        "Einstellungen",
		keyButtonCancel:          "Abbrechen",
	},
	language.French: {
		keySearchResults:         "Résultats de recherche",
		keySearchResultsLocation: "Résultats près de %s",
		keyDefaultSearchQuery:    "café",
		keySearchBarPlaceholder:  "Rechercher un lieu",
		keySearchErrorTitle:      "Recherche impossible",
		keyLocationAlertTitle:    "Service de localisation",
		keyLocationDenied:        "L'accès à la position est refusé. Autorisez-le dans les Réglages.",
		keyLocationRestricted:    "L'accès à la position est restreint sur cet appareil.",
		keyLocationServicesOff:   "Le service de localisation est désactivé. Activez-le dans les Réglages.",
		keyButtonOK:              "OK",
		keyButtonSettings:        "Réglages",
		keyButtonCancel:          "Annuler",
	},
	language.Japanese: {
		keySearchResults:         "検索結果",
		keySearchResultsLocation: "%s周辺の検索結果",
		keyDefaultSearchQuery:    "カフェ",
		keySearchBarPlaceholder:  "場所を検索",
		keySearchErrorTitle:      "検索を完了できませんでした",
		keyLocationAlertTitle:    "位置情報サービス",
		keyLocationDenied:        "位置情報へのアクセスが拒否されています。設定で許可してください。",
		keyLocationRestricted:    "このデバイスでは位置情報へのアクセスが制限されています。",
		keyLocationServicesOff:   "位置情報サービスがオフになっています。設定でオンにしてください。",
		keyButtonOK:              "OK",
		keyButtonSettings:        "設定",
		keyButtonCancel:          "キャンセル",
	},
}

var (
	supportedLanguages = []language.Tag{language.English, language.German, language.French, language.Japanese}
	languageMatcher    = language.NewMatcher(supportedLanguages)
	stringCatalog      = buildCatalog()
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, table := range translations {
		for key, msg := range table {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Localizer formats user-visible strings for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer picks the closest supported language to tag, falling back to English.
func NewLocalizer(tag language.Tag) *Localizer {
	_, index, _ := languageMatcher.Match(tag)
	base := supportedLanguages[index]
	return &Localizer{
		tag:     base,
		printer: message.NewPrinter(base, message.Catalog(stringCatalog)),
	}
}

// Language returns the supported language actually in use.
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// Header returns the result list header, naming the locality when one is known.
func (l *Localizer) Header(locality string) string {
	if locality == "" {
		return l.printer.Sprintf(keySearchResults)
	}
	return l.printer.Sprintf(keySearchResultsLocation, locality)
}

func (l *Localizer) DefaultQuery() string {
	return l.printer.Sprintf(keyDefaultSearchQuery)
}

func (l *Localizer) Placeholder() string {
	return l.printer.Sprintf(keySearchBarPlaceholder)
}

func (l *Localizer) text(key string) string {
	return l.printer.Sprintf(key)
}
