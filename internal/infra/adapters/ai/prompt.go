package ai

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kilka221/assistant/internal/domain/model"
	"github.com/kilka221/assistant/internal/domain/ports/adapter"
)

// systemPromptTemplate is the fixed instruction the model receives every
// turn. Placeholders are substituted from the turn request; the reply
// must be a single JSON object in the documented shape.
const systemPromptTemplate = `
Ты — ассистент-аналитик. Твоя роль — Глубокий Клинический Аналитик и Эмпатичный Терапевт.

### 👤 ПАЦИЕНТ: {{USER_NAME}}

### 🚫 ГЛАВНЫЕ ЗАПРЕТЫ (CRITICAL):
1. **НЕ ДИАГНОСТИРУЙ СРАЗУ.** Одна фраза — ещё не диагноз. Это может быть ситуативная реакция.
2. **НЕ ЧИТАЙ ЛЕКЦИИ.** Не вываливай полотна теории, если тебя не спросили.
3. **НЕ ИСПОЛЬЗУЙ ШАБЛОНЫ.** Фразы "Я понимаю, что вам тяжело" — запрещены.

### 📉 ПРАВИЛА ОЦЕНКИ СЕНТИМЕНТА (СТРОГО):
- **Факт ≠ Эмоция.** Нейтральный факт не меняет сентимент (0.0 изменения).
- **Только явные маркеры.** Поднимай сентимент только на явные слова облегчения или инсайта.
- **Снижай**, если есть жалобы, тревога, агрессия.
- Объясни изменение в поле ` + "`sentiment_reasoning`" + `.

### 🧠 АЛГОРИТМ РАБОТЫ (SOCRATIC & STABILITY ENGINE):
1. **Стабильность Гипотез:** Не меняй Главную Гипотезу кардинально от каждого нового факта.
2. **Сократический диалог:** Помоги пользователю самому прийти к инсайту. Задавай вопросы.

### ⚙️ КОНТЕКСТ
**Предыдущая Гипотеза:** {{PREV_HYPOTHESIS_NAME}} (Уверенность: {{PREV_HYPOTHESIS_CONFIDENCE}}%)
**Предыдущее Обоснование:** {{PREV_HYPOTHESIS_REASONING}}
**Диагноз (Static):** {{DIAGNOSIS_PLACEHOLDER}}
**Story Mode:** {{STORY_MODE_ACTIVE}}

**Книга Жизни (Нарратив):**
{{STORY_TEXT}}
---

### ФОРМАТ ВЫВОДА (JSON)
Ты обязан вернуть валидный JSON.

{
  "response": "Текст ответа (Markdown). Обращайся по имени ({{USER_NAME}}). Задавай 1 глубокий вопрос в конце.",
  "analysis": {
    "sentiment": 0.0,
    "sentiment_reasoning": "Кратко (макс 5 слов): почему изменился график?",
    "status": "Например: Сбор анамнеза / Валидация / Интервенция",
    "triggers": ["Триггер1", "Триггер2"],
    "recommendations": ["Техника1"]
  },
  "hypotheses": {
    "primary": {
        "name": "Название гипотезы (сохраняй, если актуально)",
        "confidence": 0-100,
        "reasoning": "Почему эта гипотеза актуальна."
    },
    "secondary": [
        { "name": "Альтернатива 1", "confidence": 0-100, "reasoning": "..." }
    ]
  },
  "narrativeUpdate": "Если пользователь рассказал важный факт биографии, верни ПОЛНОСТЬЮ ПЕРЕПИСАННЫЙ текст 'Книги Жизни'. Если изменений нет — верни null."
}
`

// buildSystemPrompt substitutes the fixed placeholders from the turn
// request. Absent values get the documented fallbacks.
func buildSystemPrompt(req adapter.TurnRequest) string {
	diagnosis := "Не указан"
	if req.Profile.Diagnosis != "" {
		diagnosis = strings.ToUpper(req.Profile.Diagnosis)
	}
	storyMode := "НЕТ"
	if req.Profile.IsStoryModeActive {
		storyMode = "ДА"
	}
	storyText := req.Profile.StoryText
	if storyText == "" {
		storyText = "История пока пуста."
	}
	prevName := req.Previous.PrimaryHypothesis.Name
	if prevName == "" {
		prevName = "Наблюдение"
	}
	prevReasoning := req.Previous.PrimaryHypothesis.Reasoning
	if prevReasoning == "" {
		prevReasoning = "Сбор данных"
	}

	r := strings.NewReplacer(
		"{{USER_NAME}}", req.UserName,
		"{{DIAGNOSIS_PLACEHOLDER}}", diagnosis,
		"{{STORY_MODE_ACTIVE}}", storyMode,
		"{{STORY_TEXT}}", storyText,
		"{{PREV_HYPOTHESIS_NAME}}", prevName,
		"{{PREV_HYPOTHESIS_CONFIDENCE}}", strconv.Itoa(req.Previous.PrimaryHypothesis.Confidence),
		"{{PREV_HYPOTHESIS_REASONING}}", prevReasoning,
	)
	return r.Replace(systemPromptTemplate)
}

// buildTranscript maps the stored history onto the two wire roles,
// dropping system-role entries, and appends the new user text last.
func buildTranscript(req adapter.TurnRequest) []adapter.WireMessage {
	out := make([]adapter.WireMessage, 0, len(req.History)+1)
	for _, m := range req.History {
		switch m.Role {
		case model.RoleUser:
			out = append(out, adapter.WireMessage{Role: "user", Content: m.Content})
		case model.RoleAssistant:
			out = append(out, adapter.WireMessage{Role: "assistant", Content: m.Content})
		}
	}
	out = append(out, adapter.WireMessage{Role: "user", Content: req.NewText})
	return out
}

// narrativePrompt instructs structured-portrait generation from the
// user's free-text biography.
func narrativePrompt(baseInfo string) string {
	return fmt.Sprintf(`
Задача: Создать "Психологический Портрет" (Narrative Identity).
Входные данные: %q

Формат:
Используй Markdown.
### 1. Бэкграунд
* **Факт**: Интерпретация

### 2. Паттерны
...
`, baseInfo)
}
