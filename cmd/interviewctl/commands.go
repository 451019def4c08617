package main

import (
	"github.com/spf13/cobra"

	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

func newQuestionsCmd() *cobra.Command {
	var name, resumePath, profilePath string
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate six interview questions (two per difficulty)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resume string
			if resumePath != "" {
				b, err := readInput(cmd, resumePath)
				if err != nil {
					return err
				}
				resume = string(b)
			}
			var profile *domain.ResumeProfile
			if profilePath != "" {
				profile = &domain.ResumeProfile{}
				if err := decodeInput(cmd, profilePath, profile); err != nil {
					return err
				}
			}
			ctx, svcs, cleanup, err := services(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			qs := svcs.Questions.GenerateQuestions(ctx, name, resume, profile)
			return writeOutput(cmd, map[string]any{"questions": qs})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Candidate name")
	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Path to resume text file")
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Path to parsed resume profile JSON")
	return cmd
}

func newParseResumeCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "parse-resume",
		Short: "Parse resume text into a structured profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			ctx, svcs, cleanup, err := services(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			return writeOutput(cmd, svcs.Resume.ParseResumeText(ctx, string(b)))
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "Path to resume text file, or - for stdin")
	return cmd
}

func newEvaluateCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a full answer set",
		Long:  `Score a full answer set. Input: {"questions":[...],"answers":[...]}.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req struct {
				Questions []domain.Question `json:"questions"`
				Answers   []domain.Answer   `json:"answers"`
			}
			if err := decodeInput(cmd, in, &req); err != nil {
				return err
			}
			ctx, svcs, cleanup, err := services(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			res, err := svcs.Evaluation.EvaluateAnswers(ctx, req.Questions, req.Answers)
			if err != nil {
				return err
			}
			return writeOutput(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "Path to evaluation JSON, or - for stdin")
	return cmd
}

func newQuickCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Score one answer on the low-latency path",
		Long:  `Score one answer on the low-latency path. Input: {"question":{...},"answer":{...}}.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req struct {
				Question domain.Question `json:"question"`
				Answer   domain.Answer   `json:"answer"`
			}
			if err := decodeInput(cmd, in, &req); err != nil {
				return err
			}
			ctx, svcs, cleanup, err := services(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			return writeOutput(cmd, svcs.Evaluation.QuickEvaluate(ctx, req.Question, req.Answer))
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "Path to question/answer JSON, or - for stdin")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Write the interview summary",
		Long:  `Write the interview summary. Input: {"answers":[...],"finalScore":7.5}.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req struct {
				Answers    []domain.Answer `json:"answers"`
				FinalScore float64         `json:"finalScore"`
			}
			if err := decodeInput(cmd, in, &req); err != nil {
				return err
			}
			ctx, svcs, cleanup, err := services(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			return writeOutput(cmd, map[string]string{"summary": svcs.Summary.GenerateSummary(ctx, req.Answers, req.FinalScore)})
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "Path to summary JSON, or - for stdin")
	return cmd
}
