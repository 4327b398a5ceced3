package relay

// Language tags the script a text is written in.
type Language string

const (
	LanguageEnglish Language = "english" // primary script, the default
	LanguageBengali Language = "bengali"
)
