package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-learn/internal/curriculum"
	"github.com/p-n-ai/pai-learn/internal/gamification"
	"github.com/p-n-ai/pai-learn/internal/quiz"
)

// errIssues makes `bank validate` exit non-zero.
var errIssues = errors.New("bank has issues")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "learnctl",
		Short:         "Question bank and quiz tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if v, _ := cmd.Flags().GetBool("verbose"); v {
				level = slog.LevelInfo
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().String("curriculum", "", "Curriculum directory (overrides LEARN_CURRICULUM_PATH)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log loader progress")

	root.AddCommand(newBankCmd())
	root.AddCommand(newQuizCmd())
	root.AddCommand(newRevisionCmd())
	return root
}

// loadBank resolves the curriculum directory from --curriculum, then
// LEARN_CURRICULUM_PATH, then ./content.
func loadBank(cmd *cobra.Command) (*curriculum.Bank, error) {
	path, _ := cmd.Flags().GetString("curriculum")
	if path == "" {
		path = os.Getenv("LEARN_CURRICULUM_PATH")
	}
	if path == "" {
		path = "./content"
	}
	return curriculum.Load(path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newBankCmd() *cobra.Command {
	bank := &cobra.Command{
		Use:   "bank",
		Short: "Inspect the question bank",
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Report rejected documents and items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBank(cmd)
			if err != nil {
				return err
			}
			issues := b.Issues()
			out := cmd.OutOrStdout()
			for _, is := range issues {
				if is.ItemID != "" {
					fmt.Fprintf(out, "%s: %s: %s\n", is.Path, is.ItemID, is.Reason)
				} else {
					fmt.Fprintf(out, "%s: %s\n", is.Path, is.Reason)
				}
			}
			if len(issues) > 0 {
				fmt.Fprintf(out, "%d issue(s)\n", len(issues))
				return errIssues
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print bank counts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBank(cmd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b.Stats())
		},
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write every question to an .xlsx sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("out")
			b, err := loadBank(cmd)
			if err != nil {
				return err
			}
			questions := b.FindQuestions(nil)
			if err := curriculum.ExportQuestions(questions, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d questions to %s\n", len(questions), path)
			return nil
		},
	}
	export.Flags().String("out", "questions.xlsx", "Output file")

	bank.AddCommand(validate, stats, export)
	return bank
}

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate a quiz from chapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chapters, _ := cmd.Flags().GetStringSlice("chapters")
			count, _ := cmd.Flags().GetInt("count")
			grade, _ := cmd.Flags().GetString("grade")
			diff, _ := cmd.Flags().GetString("difficulty")

			if len(chapters) == 0 || grade == "" {
				return fmt.Errorf("--chapters and --grade are required")
			}
			if count < 1 {
				return fmt.Errorf("--count must be positive")
			}
			difficulty, ok := curriculum.ParseDifficulty(strings.ToLower(diff))
			if !ok {
				return fmt.Errorf("unknown difficulty %q", diff)
			}

			b, err := loadBank(cmd)
			if err != nil {
				return err
			}
			questions := quiz.NewGenerator(b).GenerateQuiz(chapters, count, grade, difficulty)
			return printJSON(cmd.OutOrStdout(), quiz.NewQuiz(questions, count))
		},
	}
	cmd.Flags().StringSlice("chapters", nil, "Chapter IDs, comma separated")
	cmd.Flags().Int("count", 10, "Number of questions")
	cmd.Flags().String("grade", "", "Grade")
	cmd.Flags().String("difficulty", "all", "easy, medium, hard or all")
	return cmd
}

func newRevisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revision",
		Short: "Generate a revision set across subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subjects, _ := cmd.Flags().GetStringSlice("subjects")
			grade, _ := cmd.Flags().GetString("grade")
			total, _ := cmd.Flags().GetInt("total")

			if len(subjects) == 0 || grade == "" {
				return fmt.Errorf("--subjects and --grade are required")
			}
			if total < 1 {
				return fmt.Errorf("--total must be positive")
			}

			b, err := loadBank(cmd)
			if err != nil {
				return err
			}
			items := quiz.NewGenerator(b).GenerateRevisionSet(subjects, grade, total)
			return printJSON(cmd.OutOrStdout(), quiz.NewRevisionSet(items, total))
		},
	}
	cmd.Flags().StringSlice("subjects", nil, "Subject IDs, comma separated")
	cmd.Flags().String("grade", "", "Grade")
	cmd.Flags().Int("total", gamification.RevisionSessionSize, "Number of revision items")
	return cmd
}
