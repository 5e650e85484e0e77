package prompt

import "github.com/poiesic/lunaris/core"

const languageDetectionSystem = `You are a language detection expert. Analyze the following text and identify its primary language.

        IMPORTANT RULES:
        1. Respond with ONLY the language name in English format: "Vietnamese", "English", "Chinese", "Korean", "Japanese", "French", "Russian", "Thai", "Indonesian", "German", "India", "Malaysia", "Portuguese", "Cambodia", "Netherlands", "Spain"
        2. If there are Chinese characters, it is considered Chinese only when 100% of the content is in Chinese.
        3. For mixed-language text, identify the DOMINANT language (more than 60% of content)
        4. For very short text (1-3 words), be extra careful about context`

// LanguageDetectionTurns builds the few-shot exchange for language
// detection. Mixed-language examples anchor the dominant-language rule; the
// final turn carries the text under analysis.
func LanguageDetectionTurns(userInput string) []core.Turn {
	return []core.Turn{
		{Role: core.RoleSystem, Content: languageDetectionSystem},
		{Role: core.RoleUser, Content: "TEXT TO ANALYZE: 我喜欢冰淇淋 là gì"},
		{Role: core.RoleAssistant, Content: "DETECTED LANGUAGE: Vietnamese"},
		{Role: core.RoleUser, Content: "TEXT TO ANALYZE: 对不起 道歉 抱歉 nghĩa là gì"},
		{Role: core.RoleAssistant, Content: "DETECTED LANGUAGE: Vietnamese"},
		{Role: core.RoleUser, Content: "TEXT TO ANALYZE: what is 大家好，世界"},
		{Role: core.RoleAssistant, Content: "DETECTED LANGUAGE: English"},
		{Role: core.RoleUser, Content: "TEXT TO ANALYZE: Xin chào, tôi là một sinh viên"},
		{Role: core.RoleAssistant, Content: "DETECTED LANGUAGE: Vietnamese"},
		{Role: core.RoleUser, Content: "TEXT TO ANALYZE: Hello, how are you today?"},
		{Role: core.RoleAssistant, Content: "DETECTED LANGUAGE: English"},
		{Role: core.RoleUser, Content: "TEXT TO ANALYZE: 你好世界，这是中文文本"},
		{Role: core.RoleAssistant, Content: "DETECTED LANGUAGE: Chinese"},
		{Role: core.RoleUser, Content: "TEXT TO ANALYZE: OK"},
		{Role: core.RoleAssistant, Content: "DETECTED LANGUAGE: English"},
		{Role: core.RoleUser, Content: "TEXT TO ANALYZE: " + userInput},
	}
}
