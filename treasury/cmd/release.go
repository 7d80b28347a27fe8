package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

// releaseCmd represents the release command
var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Execute scheduled transfers whose date has arrived",
	Run: func(_ *cobra.Command, _ []string) {
		eng, err := loadEngine()
		if err != nil {
			log.Fatalln(err)
		}
		released := eng.executor.ReleaseDue(time.Now())
		eng.save()

		if len(released) == 0 {
			fmt.Println("No scheduled transfers due.")
			return
		}
		for _, rec := range released {
			fmt.Printf("Released %s -> %s: %s %s\n",
				rec.FromAccount, rec.ToAccount,
				rec.FromCurrency, rec.Amount.StringFixedBank(2))
		}
	},
}

func init() {
	rootCmd.AddCommand(releaseCmd)
}
