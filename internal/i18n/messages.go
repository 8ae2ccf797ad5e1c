// Package i18n holds the user-facing strings of the campaign in English and
// Arabic, registered in an x/text catalog.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	KeyAmountRequired     = "amount.required"
	KeyAmountInvalid      = "amount.invalid"
	KeyInvalidPayload     = "request.invalid_payload"
	KeySubmitSuccess      = "submit.success"
	KeySubmitFailed       = "submit.failed"
	KeySubmitBusy         = "submit.busy"
	KeyFetchFailed        = "stats.fetch_failed"
	KeyTotalLabel         = "stats.total"
	KeyContributionsLabel = "stats.contributions"
	KeyLivePush           = "live.push"
	KeyLivePolling        = "live.polling"
)

// Supported lists the catalog languages; the first entry is the fallback.
var Supported = []language.Tag{language.English, language.Arabic}

var messages = map[language.Tag]map[string]string{
	language.English: {
		KeyAmountRequired:     "Please enter the number of salawat",
		KeyAmountInvalid:      "Amount must be a positive integer",
		KeyInvalidPayload:     "Invalid request payload",
		KeySubmitSuccess:      "Your salawat were added successfully! ﷺ",
		KeySubmitFailed:       "Failed to process submission. Please try again.",
		KeySubmitBusy:         "A submission is already in progress",
		KeyFetchFailed:        "Failed to fetch stats",
		KeyTotalLabel:         "Total salawat",
		KeyContributionsLabel: "Contributions",
		KeyLivePush:           "live",
		KeyLivePolling:        "polling",
	},
	language.Arabic: {
		KeyAmountRequired:     "يرجى إدخال عدد الصلوات",
		KeyAmountInvalid:      "يرجى إدخال عدد صحيح موجب",
		KeyInvalidPayload:     "طلب غير صالح",
		KeySubmitSuccess:      "تم إضافة صلواتك بنجاح! ﷺ",
		KeySubmitFailed:       "تعذر إرسال المساهمة. يرجى المحاولة مرة أخرى.",
		KeySubmitBusy:         "جارٍ إرسال مساهمة سابقة",
		KeyFetchFailed:        "تعذر تحميل الإحصائيات",
		KeyTotalLabel:         "إجمالي الصلوات",
		KeyContributionsLabel: "عدد المساهمات",
		KeyLivePush:           "مباشر",
		KeyLivePolling:        "تحديث دوري",
	},
}

var (
	matcher = language.NewMatcher(Supported)
	cat     = mustBuildCatalog()
	numbers = message.NewPrinter(language.English)
)

func mustBuildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for tag, entries := range messages {
		for key, msg := range entries {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Match returns the supported language closest to locale (a BCP 47 tag or an
// Accept-Language value). Unknown or empty input falls back to English.
func Match(locale string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return Supported[idx]
}

// Printer returns a message printer bound to the campaign catalog.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(Match(locale), message.Catalog(cat))
}

// Message returns the localized string for key.
func Message(locale, key string) string {
	return Printer(locale).Sprintf(key)
}

// FormatCount renders n with grouped digits the way the counters are displayed.
func FormatCount(n int64) string {
	return numbers.Sprintf("%d", n)
}
