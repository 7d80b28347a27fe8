package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/jbrukh/bayesian"
	"github.com/spf13/cobra"
)

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest <note words>",
	Args:  cobra.MinimumNArgs(1),
	Short: "Suggest a destination account for a transfer note, based on history",
	Run: func(_ *cobra.Command, args []string) {
		eng, err := loadEngine()
		if err != nil {
			log.Fatalln(err)
		}
		name, ok := suggestAccount(eng, args)
		if !ok {
			fmt.Println("Not enough transfer history to make a suggestion.")
			return
		}
		fmt.Println(name)
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

// suggestAccount trains a naive Bayes classifier on past notes keyed
// by destination account and scores the given words against it.
func suggestAccount(eng *engine, words []string) (string, bool) {
	history := eng.ledger.History()

	seen := make(map[string]bool)
	var classes []bayesian.Class
	for _, rec := range history {
		if rec.Note == "" || seen[rec.ToAccount] {
			continue
		}
		seen[rec.ToAccount] = true
		classes = append(classes, bayesian.Class(rec.ToAccount))
	}
	if len(classes) < 2 {
		return "", false
	}

	classifier := bayesian.NewClassifier(classes...)
	for _, rec := range history {
		if rec.Note == "" {
			continue
		}
		classifier.Learn(strings.Fields(strings.ToLower(rec.Note)), bayesian.Class(rec.ToAccount))
	}

	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	_, inx, _ := classifier.LogScores(words)
	return string(classifier.Classes[inx]), true
}
