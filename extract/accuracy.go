package extract

import (
	"fmt"
	"strings"

	"curator/dataset"
)

// Strategy turns a model answer into a predicted label
type Strategy func(answer string) (int, error)

// Misclassification is one row whose predicted label differs from the truth
type Misclassification struct {
	Index     int `json:"index"`
	Predicted int `json:"predicted"`
	Truth     int `json:"truth"`
}

// RowError is a row that could not be scored
type RowError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Accuracy is the outcome of scoring an inference file
type Accuracy struct {
	Accuracy  float64             `json:"accuracy"`
	Correct   int                 `json:"correct"`
	Total     int                 `json:"total"`
	Errors    []RowError          `json:"errors,omitempty"`
	Incorrect []Misclassification `json:"incorrect,omitempty"`
}

// MeasureAccuracy scores each row's final message against its metadata label.
// Rows that cannot be scored count towards Total as incorrect.
func MeasureAccuracy(rows []dataset.Conversation, strategy Strategy) Accuracy {
	if strategy == nil {
		strategy = FirstInteger
	}

	var acc Accuracy
	for i := range rows {
		acc.Total++

		predicted, truth, err := scoreRow(&rows[i], strategy)
		if err != nil {
			acc.Errors = append(acc.Errors, RowError{Index: i, Reason: err.Error()})
			continue
		}
		if predicted == truth {
			acc.Correct++
		} else {
			acc.Incorrect = append(acc.Incorrect, Misclassification{Index: i, Predicted: predicted, Truth: truth})
		}
	}

	if acc.Total > 0 {
		acc.Accuracy = float64(acc.Correct) / float64(acc.Total)
	}
	return acc
}

func scoreRow(row *dataset.Conversation, strategy Strategy) (predicted, truth int, err error) {
	last, err := row.LastMessage()
	if err != nil {
		return 0, 0, err
	}
	predicted, err = strategy(strings.TrimSpace(last.Content))
	if err != nil {
		return 0, 0, err
	}
	truth, err = row.Label()
	if err != nil {
		return 0, 0, fmt.Errorf("missing ground truth: %w", err)
	}
	return predicted, truth, nil
}
