package service

import (
	"bytes"
	"context"
	"fmt"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/util"
	"learning_system_backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

type QuizExport struct {
	QuizID   uint   `json:"quizId"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// QuizExportService renders quizzes as printable PDF sheets and stores them.
type QuizExportService struct {
	QuizService *QuizService
	Storage     *StorageService
}

func NewQuizExportService(quizService *QuizService, storage *StorageService) *QuizExportService {
	return &QuizExportService{QuizService: quizService, Storage: storage}
}

var optionLabels = [...]string{"A", "B", "C", "D", "E", "F"}

// RenderQuizSheet lays out every question with its lettered options. With
// answerKey set, a final page lists the correct option of each question.
func RenderQuizSheet(q *model.Quiz, answerKey bool) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("%s quiz %d", q.Subject, q.ID), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s - Class %s", q.Subject, q.ClassID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Quiz #%d  Questions: %d", q.ID, len(q.Questions)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Name: ______________________________", "", 1, "L", false, 0, "")
	pdf.Ln(6)

	for i, question := range q.Questions {
		pdf.SetFont("Arial", "B", 12)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, question.Prompt)), "", "L", false)
		pdf.SetFont("Arial", "", 11)
		for j, opt := range question.Options {
			label := fmt.Sprint(j + 1)
			if j < len(optionLabels) {
				label = optionLabels[j]
			}
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("   %s) %s", label, opt)), "", "L", false)
		}
		pdf.Ln(4)
	}

	if answerKey {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, "Answer key", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for i, question := range q.Questions {
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, question.Answer)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export renders the quiz with its answer key and uploads it to storage.
func (s *QuizExportService) Export(ctx context.Context, quizID uint) (*QuizExport, error) {
	q, err := s.QuizService.GetQuiz(ctx, quizID, true)
	if err != nil {
		return nil, err
	}

	data, err := RenderQuizSheet(q, true)
	if err != nil {
		return nil, fmt.Errorf("render quiz sheet: %w", err)
	}

	filename := fmt.Sprintf("quizzes/quiz_%d_%s.pdf", q.ID, uuid.NewString())
	url, err := s.Storage.Upload(ctx, filename, bytes.NewReader(data), int64(len(data)), util.MimePDF)
	if err != nil {
		return nil, fmt.Errorf("upload quiz sheet: %w", err)
	}

	logger.Log.Info("Quiz exported", zap.Uint("quizId", q.ID), zap.String("file", filename))
	return &QuizExport{QuizID: q.ID, Filename: filename, URL: url}, nil
}
