package plan

var basicPlan = Plan{
	Variant: Basic,
	Sections: []Section{
		{
			Key:   "basic",
			Title: "Психологическая расшифровка личности",
			PageTitles: []string{
				"Кто вы по типу личности?",
				"Как вы мыслите и принимаете решения?",
				"Какие паттерны ограничивают ваше развитие?",
			},
		},
	},
}

// Every premium section targets 7 pages; 9 sections give 63 pages.
var premiumPlan = Plan{
	Variant: Premium,
	Sections: []Section{
		{
			Key:   "personality",
			Title: "Кто вы по типу личности",
			Subsections: []Subsection{
				{"Ведущий тип личности и его проявления в жизни", 2},
				{"Базовые мотивы и ценности", 1.5},
				{"Как вас видят окружающие", 1.5},
				{"Внутренние противоречия характера", 2},
			},
		},
		{
			Key:   "thinking",
			Title: "Как вы мыслите и принимаете решения",
			Subsections: []Subsection{
				{"Стиль мышления и обработка информации", 2.5},
				{"Принятие решений в условиях неопределённости", 2.5},
				{"Когнитивные искажения и слепые зоны", 2},
			},
		},
		{
			Key:   "emotions",
			Title: "Как вы воспринимаете и проживаете эмоции",
			Subsections: []Subsection{
				{"Эмоциональный профиль", 2},
				{"Реакции на стресс и способы восстановления", 2},
				{"Отношения со страхом и тревогой", 1.5},
				{"Эмоциональные ресурсы", 1.5},
			},
		},
		{
			Key:   "patterns",
			Title: "Какие паттерны ограничивают ваше развитие",
			Subsections: []Subsection{
				{"Ограничивающие убеждения", 2},
				{"Репетитивные модели поведения", 2},
				{"Как перфекционизм и самокритика влияют на вас", 1.5},
				{"Как паттерны блокируют ваши цели", 1.5},
			},
		},
		{
			Key:   "relationships",
			Title: "Как вы строите отношения",
			Subsections: []Subsection{
				{"Стиль привязанности", 2.5},
				{"Коммуникация и конфликты", 2.5},
				{"Границы и доверие", 2},
			},
		},
		{
			Key:   "strengths",
			Title: "Ваши сильные стороны",
			Subsections: []Subsection{
				{"Ключевые таланты", 2},
				{"Сильные стороны в работе", 1.5},
				{"Сильные стороны в отношениях", 1.5},
				{"Как опираться на свои сильные стороны", 2},
			},
		},
		{
			Key:   "growth",
			Title: "Зоны роста",
			Subsections: []Subsection{
				{"Главные зоны роста", 2.5},
				{"Навыки, которые стоит развивать", 2.5},
				{"Практики для ежедневной работы над собой", 2},
			},
		},
		{
			Key:   "calling",
			Title: "Реализация и призвание",
			Subsections: []Subsection{
				{"Подходящие сферы и роли", 2},
				{"Что даёт вам энергию", 1.5},
				{"Что забирает вашу энергию", 1.5},
				{"Путь к реализации", 2},
			},
		},
		{
			Key:   "roadmap",
			Title: "Персональный план развития",
			Subsections: []Subsection{
				{"Цели на ближайшие три месяца", 2.5},
				{"Шаги и привычки", 2.5},
				{"Поддерживающие утверждения", 1},
				{"Заключение", 1},
			},
		},
	},
}
