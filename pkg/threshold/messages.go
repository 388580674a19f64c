package threshold

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// English texts double as catalog keys.
const (
	msgTempLow          = "Soil temperature is too low (%.1f°C): wait for the soil to warm up to at least %.1f°C"
	msgTempHigh         = "Soil temperature is too high (%.1f°C): wait or irrigate to cool the soil down to %.1f°C"
	msgTempOk           = "Soil temperature %.1f°C is within range (%.1f-%.1f°C)"
	msgTempUnavailable  = "Soil temperature reading is unavailable: postpone until the sensor reports"
	msgMoistLow         = "Soil moisture is too low (%.1f%%): irrigate to raise it to at least %.1f%%"
	msgMoistHigh        = "Soil moisture is too high (%.1f%%): postpone work until the field drains to %.1f%%"
	msgMoistOk          = "Soil moisture %.1f%% is within range (%.1f-%.1f%%)"
	msgMoistUnavailable = "Soil moisture reading is unavailable: postpone until the sensor reports"
	msgPhLow            = "Soil pH is too acidic (%.1f): consider liming to raise it toward %.1f"
	msgPhHigh           = "Soil pH is too alkaline (%.1f): consider acidifying amendments to lower it toward %.1f"
	msgPhOk             = "Soil pH %.1f is within range (%.1f-%.1f)"
	msgPhUnavailable    = "Soil pH reading is unavailable: schedule a soil test"
)

func init() {
	ru := map[string]string{
		msgTempLow:          "Температура почвы слишком низкая (%.1f°C): дождитесь прогрева почвы минимум до %.1f°C",
		msgTempHigh:         "Температура почвы слишком высокая (%.1f°C): подождите или проведите полив до снижения до %.1f°C",
		msgTempOk:           "Температура почвы %.1f°C в допустимых пределах (%.1f-%.1f°C)",
		msgTempUnavailable:  "Нет данных о температуре почвы: отложите работы до получения показаний",
		msgMoistLow:         "Влажность почвы слишком низкая (%.1f%%): рекомендуется полив минимум до %.1f%%",
		msgMoistHigh:        "Влажность почвы слишком высокая (%.1f%%): отложите работы до снижения до %.1f%%",
		msgMoistOk:          "Влажность почвы %.1f%% в допустимых пределах (%.1f-%.1f%%)",
		msgMoistUnavailable: "Нет данных о влажности почвы: отложите работы до получения показаний",
		msgPhLow:            "Почва слишком кислая (pH %.1f): рекомендуется известкование до %.1f",
		msgPhHigh:           "Почва слишком щелочная (pH %.1f): рекомендуется подкисление до %.1f",
		msgPhOk:             "pH почвы %.1f в допустимых пределах (%.1f-%.1f)",
		msgPhUnavailable:    "Нет данных о pH почвы: запланируйте анализ почвы",
	}

	for key, text := range ru {
		_ = message.SetString(language.Russian, key, text)
	}
}

// SupportedLanguages lists the languages advisories can be rendered in.
var SupportedLanguages = []language.Tag{language.English, language.Russian}

// MatchLanguage picks the closest supported language for a BCP 47 string.
func MatchLanguage(tag string) language.Tag {
	matcher := language.NewMatcher(SupportedLanguages)
	_, idx, _ := matcher.Match(language.Make(tag))

	return SupportedLanguages[idx]
}
