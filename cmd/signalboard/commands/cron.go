package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// cronCmd represents the cron command
var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "cron 작업 수동 실행",
	Long: `HTTP cron 엔드포인트와 같은 작업을 CLI에서 한 번 실행합니다.

Subcommands:
  daily   - 캐시 초기화 + 일일 다이제스트 발송

Example:
  go run ./cmd/signalboard cron daily`,
}

var cronDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "일일 작업 1회 실행",
	Long: `GET /api/cron/daily 와 동일한 작업을 실행합니다.

같은 날짜에 다시 실행해도 이미 발송된 구독자에게는 재발송하지 않습니다.`,
	RunE: runCronDaily,
}

var cronTimeout time.Duration

func init() {
	rootCmd.AddCommand(cronCmd)
	cronCmd.AddCommand(cronDailyCmd)

	cronDailyCmd.Flags().DurationVar(&cronTimeout, "timeout", 10*time.Minute, "작업 제한 시간")
}

func runCronDaily(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cronTimeout)
	defer cancel()

	result, err := a.daily.Run(ctx, "cli")
	if err != nil {
		return fmt.Errorf("daily job: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
