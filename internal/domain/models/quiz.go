// internal/domain/models/quiz.go
package models

import "time"

// Question is a single multiple-choice question. Answer is the index into
// Options and is stripped before a quiz is shown to a member taking it.
type Question struct {
	Prompt  string   `bson:"prompt" json:"prompt"`
	Options []string `bson:"options" json:"options"`
	Answer  int      `bson:"answer" json:"answer,omitempty"`
}

// Quiz lives at classrooms/{classroomID}/quizzes/{id}.
type Quiz struct {
	ID            string     `bson:"_id" json:"id"`
	Title         string     `bson:"title" json:"title"`
	Questions     []Question `bson:"questions" json:"questions"`
	CreatedByID   string     `bson:"created_by_id" json:"created_by_id"`
	CreatedByName string     `bson:"created_by_name" json:"created_by_name"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
}

// Score lives at classrooms/{classroomID}/scores/{id}, one document per
// submission. QuizTitle and UserName are denormalized so score history can
// render without resolving the quiz or user.
type Score struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	UserName  string    `bson:"user_name" json:"user_name"`
	QuizID    string    `bson:"quiz_id" json:"quiz_id"`
	QuizTitle string    `bson:"quiz_title" json:"quiz_title"`
	Correct   int       `bson:"correct" json:"correct"`
	Total     int       `bson:"total" json:"total"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
