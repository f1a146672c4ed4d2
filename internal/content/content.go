// Package content holds the static definition of the assessment paper:
// section ordering, titles and question counts. Sections and questions are
// seeded once at process start and owned by the assessment store afterwards.
package content

import "github.com/teamcollar/stem-assessment/internal/model"

// Sections returns the fixed section layout of the STEM assessment.
// Question IDs are assigned contiguously across sections in this order.
func Sections() []model.Section {
	return []model.Section{
		{ID: 1, Title: "Science", Description: "Testing knowledge of scientific principles", QuestionCount: 20},
		{ID: 2, Title: "Technology", Description: "Testing knowledge of technological concepts", QuestionCount: 20},
		{ID: 3, Title: "Engineering Awareness", Description: "Testing awareness of engineering principles", QuestionCount: 20},
		{ID: 4, Title: "Mathematics", Description: "Testing mathematical problem-solving skills", QuestionCount: 20},
	}
}

// Questions builds the initial question list for the given sections.
// Question 1 starts as the current question; everything else is unvisited.
func Questions(sections []model.Section) []model.Question {
	var questions []model.Question
	id := 1
	for _, section := range sections {
		for i := 0; i < section.QuestionCount; i++ {
			status := model.StatusNotVisited
			if id == 1 {
				status = model.StatusCurrent
			}
			questions = append(questions, model.Question{
				ID:        id,
				SectionID: section.ID,
				Status:    status,
			})
			id++
		}
	}
	return questions
}
