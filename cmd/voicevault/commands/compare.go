package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrellabs/voicevault/pkg/audio"
	"github.com/kestrellabs/voicevault/pkg/biometric"
	"github.com/kestrellabs/voicevault/pkg/cli"
	"github.com/kestrellabs/voicevault/pkg/features"
)

var (
	compareThreshold float64
	compareFFmpeg    string
)

var compareCmd = &cobra.Command{
	Use:   "compare <recording-a> <recording-b>",
	Short: "Compare the voiceprints of two recordings",
	Long: `Run the offline voiceprint pipeline on two recordings and print
their cosine similarity. Non-WAV inputs are converted with ffmpeg.

Useful for tuning the match threshold against known same-speaker and
different-speaker pairs.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().Float64Var(&compareThreshold, "threshold", biometric.DefaultThreshold, "match threshold")
	compareCmd.Flags().StringVar(&compareFFmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary for non-WAV input")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	dec := &audio.Decoder{FFmpegPath: compareFFmpeg}
	ext := features.New(features.DefaultConfig())

	prints := make([][]float32, 2)
	for i, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sample, err := dec.Decode(cmd.Context(), data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		prints[i], err = ext.Extract(sample.Data, sample.Rate)
		if err != nil {
			return fmt.Errorf("extract %s: %w", path, err)
		}
	}

	match, score, err := biometric.Match(prints[0], prints[1], compareThreshold)
	if err != nil {
		return err
	}

	styles := cli.NewStyles(cli.DefaultTheme)
	verdict := styles.Title.Render("MATCH")
	if !match {
		verdict = styles.Bad.Render("NO MATCH")
	}
	card := cli.Card{
		Styles: styles,
		Title:  "Voiceprint comparison",
		Rows: [][2]string{
			{"A", args[0]},
			{"B", args[1]},
			{"Score", fmt.Sprintf("%.4f", score)},
			{"Threshold", fmt.Sprintf("%.4f", compareThreshold)},
			{"Verdict", verdict},
		},
	}
	fmt.Fprintln(cmd.OutOrStdout(), card.Render())
	return nil
}
