// Package prompts builds the messages sent to the generation service.
package prompts

import (
	"fmt"
	"strings"

	"github.com/thywilljoshua/survey-report/internal/parse"
	"github.com/thywilljoshua/survey-report/internal/plan"
	"github.com/thywilljoshua/survey-report/internal/survey"
)

const systemCommon = `Ты опытный психолог-аналитик. Ты готовишь персональный психологический отчёт по ответам пользователя на опросник.

Правила:
- Пиши на русском языке, обращайся к читателю на «вы».
- Опирайся только на ответы пользователя; цитируй их в кавычках-ёлочках «...», когда это уместно.
- Не ставь диагнозов и не используй медицинскую терминологию.
- Не используй таблицы, ссылки и сноски вида [1].
- Заголовки пиши отдельной строкой, подзаголовки завершай двоеточием.
- Списки оформляй строками, начинающимися с «- » или «1. ».`

// System returns the system instructions for a report variant.
func System(v plan.Variant) string {
	switch v {
	case plan.Premium:
		return systemCommon + `

Это расширенный отчёт объёмом около 60 страниц. Он состоит из девяти разделов; каждый раздел будет запрошен отдельно, а затем по подразделам. Пиши развёрнуто, без повторов между разделами.`
	default:
		return systemCommon + `

Это краткий отчёт из трёх страниц. Будь конкретен и лаконичен.`
	}
}

// Transcript formats the user's answers as the data message.
func Transcript(u survey.User, t survey.Transcript) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ответы пользователя %s на опросник (%d вопросов):\n\n", u.DisplayName(), t.Len())
	for _, e := range t.Entries() {
		fmt.Fprintf(&b, "%d. %s\nОтвет: %s\n\n", e.Number, strings.TrimSpace(e.Question), strings.TrimSpace(e.Answer))
	}
	b.WriteString("Изучи ответы. Пока ничего не пиши, коротко подтверди, что данные получены.")
	return b.String()
}

// Section introduces one section and its subsections.
func Section(s plan.Section, charsPerPage int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Переходим к разделу «%s».\n", s.Title)
	if len(s.Subsections) > 0 {
		b.WriteString("Подразделы:\n")
		for i, sub := range s.Subsections {
			fmt.Fprintf(&b, "%d. %s (около %d символов)\n", i+1, sub.Description, sub.TargetChars(charsPerPage))
		}
	} else {
		b.WriteString("Страницы:\n")
		for i, title := range s.PageTitles {
			fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		}
	}
	b.WriteString("Каждый подраздел я запрошу отдельно. Сейчас кратко, в двух-трёх предложениях, опиши главную мысль раздела.")
	return b.String()
}

// Subsection asks for the pages of subsection i of s.
func Subsection(s plan.Section, i, charsPerPage int) string {
	sub := s.Subsections[i]
	pages := sub.ExpectedPages()
	var b strings.Builder
	fmt.Fprintf(&b, "Раздел «%s», подраздел %d: «%s».\n", s.Title, i+1, sub.Description)
	fmt.Fprintf(&b, "Напиши текст объёмом около %d символов, разбитый на %d %s.\n",
		sub.TargetChars(charsPerPage), pages, pageWord(pages))
	writeMarkerRules(&b, pages)
	fmt.Fprintf(&b, "Первая страница начинается с заголовка «%s».", sub.Description)
	return b.String()
}

// Pages asks for every page of a section without subsections in one reply.
func Pages(s plan.Section, charsPerPage int) string {
	pages := len(s.PageTitles)
	var b strings.Builder
	fmt.Fprintf(&b, "Напиши %d %s, каждая объёмом около %d символов.\n", pages, pageWord(pages), charsPerPage)
	writeMarkerRules(&b, pages)
	for i, title := range s.PageTitles {
		fmt.Fprintf(&b, "Страница %d начинается с заголовка «%s».\n", i+1, title)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeMarkerRules(b *strings.Builder, pages int) {
	switch pages {
	case 1:
		fmt.Fprintf(b, "Начни ответ отдельной строкой с маркером %s.\n", parse.Marker(1))
	case 2:
		fmt.Fprintf(b, "Перед каждой страницей поставь отдельной строкой маркер: %s и %s.\n",
			parse.Marker(1), parse.Marker(2))
	default:
		fmt.Fprintf(b, "Перед каждой страницей поставь отдельной строкой маркер: %s, %s и так далее до %s.\n",
			parse.Marker(1), parse.Marker(2), parse.Marker(pages))
	}
	b.WriteString("Никакого текста до первого маркера и после последней страницы.\n")
}

func pageWord(n int) string {
	switch {
	case n%10 == 1 && n%100 != 11:
		return "страницу"
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14):
		return "страницы"
	default:
		return "страниц"
	}
}

// FallbackBasicPages is the canned text of a basic report produced when the
// generation service is disabled. One entry per page.
func FallbackBasicPages() []string {
	return []string{
		`Кто вы по типу личности?

Ваши ответы показывают человека, который внимательно относится к себе и к окружающим. Вы замечаете детали, которые другие пропускают, и стараетесь понять причины происходящего, а не только его внешнюю сторону.

Сильные стороны:
- способность к рефлексии и честному взгляду на себя;
- готовность учиться на собственном опыте;
- внимание к чувствам других людей.

Полный персональный разбор временно недоступен. Этот текст дает общее направление для размышлений.`,
		`Как вы мыслите и принимаете решения?

Вы склонны взвешивать варианты и предпочитаете понимать последствия до того, как действовать. Это помогает избегать поспешных ошибок, но иногда откладывает важные шаги.

«Решение, принятое вовремя, ценнее идеального решения, принятого слишком поздно.»

Попробуйте заранее задавать себе срок для выбора и опираться на два-три ключевых критерия, а не на все сразу.`,
		`Какие паттерны ограничивают ваше развитие?

Частые ограничения связаны с высокими требованиями к себе и ожиданием полной уверенности перед началом действия.

Что можно сделать уже сейчас:
1. Замечать моменты, когда вы откладываете дело из-за сомнений.
2. Делать первый небольшой шаг, не дожидаясь идеального плана.
3. Отмечать свои успехи, даже небольшие.

Повторите запрос отчёта позже, чтобы получить подробный анализ ваших ответов.`,
	}
}
