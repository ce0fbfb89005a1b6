package lockbench

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"
)

// Latency 排队等待耗时分位数。
type Latency struct {
	P50 time.Duration `json:"p50"`
	P90 time.Duration `json:"p90"`
	P99 time.Duration `json:"p99"`
	Max time.Duration `json:"max"`
}

// Report 一次压测的结果。
type Report struct {
	RunID   string        `json:"run_id"`
	Mode    string        `json:"mode"`
	Queue   string        `json:"queue"`
	Workers int           `json:"workers"`
	Elapsed time.Duration `json:"elapsed"`

	Acquired   int64 `json:"acquired"`
	Canceled   int64 `json:"canceled"`
	Discarded  int64 `json:"discarded"`
	Busy       int64 `json:"busy"`
	Violations int64 `json:"violations"`
	MaxHolders int64 `json:"max_holders"`

	Wait Latency `json:"wait"`

	// Interrupted 非空表示运行被信号或调用方提前结束。
	Interrupted string `json:"interrupted,omitempty"`

	Metrics []MetricPoint `json:"metrics,omitempty"`
}

func newReport(runID string, cfg Config, elapsed time.Duration, stats []workerStats) *Report {
	rep := &Report{
		RunID:   runID,
		Mode:    cfg.Mode,
		Queue:   cfg.Queue,
		Workers: cfg.Workers,
		Elapsed: elapsed,
	}
	var waits []time.Duration
	for i := range stats {
		rep.Acquired += stats[i].acquired
		rep.Canceled += stats[i].canceled
		rep.Discarded += stats[i].discarded
		rep.Busy += stats[i].busy
		waits = append(waits, stats[i].waits...)
	}
	rep.Wait = latencyOf(waits)
	return rep
}

// latencyOf 计算分位数，会就地排序 waits。
func latencyOf(waits []time.Duration) Latency {
	if len(waits) == 0 {
		return Latency{}
	}
	slices.Sort(waits)
	at := func(q float64) time.Duration {
		i := int(q * float64(len(waits)-1))
		return waits[i]
	}
	return Latency{
		P50: at(0.50),
		P90: at(0.90),
		P99: at(0.99),
		Max: waits[len(waits)-1],
	}
}

// Err 报告期间观察到互斥被破坏时返回 ErrExclusionViolated。
func (r *Report) Err() error {
	if r.Violations > 0 {
		return fmt.Errorf("%w: %d overlapping holders (max %d)", ErrExclusionViolated, r.Violations, r.MaxHolders)
	}
	return nil
}

// Write 以 text 或 json 格式输出报告。
func (r *Report) Write(w io.Writer, format string) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return r.writeText(w)
}

func (r *Report) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", r.RunID)
	fmt.Fprintf(tw, "mode\t%s (queue=%s, workers=%d)\n", r.Mode, r.Queue, r.Workers)
	fmt.Fprintf(tw, "elapsed\t%s\n", r.Elapsed.Round(time.Millisecond))
	if r.Interrupted != "" {
		fmt.Fprintf(tw, "interrupted\t%s\n", r.Interrupted)
	}
	fmt.Fprintf(tw, "acquired\t%d\n", r.Acquired)
	fmt.Fprintf(tw, "canceled\t%d\n", r.Canceled)
	fmt.Fprintf(tw, "discarded\t%d\n", r.Discarded)
	fmt.Fprintf(tw, "busy\t%d\n", r.Busy)
	fmt.Fprintf(tw, "violations\t%d\n", r.Violations)
	fmt.Fprintf(tw, "max holders\t%d\n", r.MaxHolders)
	fmt.Fprintf(tw, "wait\tp50=%s p90=%s p99=%s max=%s\n", r.Wait.P50, r.Wait.P90, r.Wait.P99, r.Wait.Max)
	for _, p := range r.Metrics {
		fmt.Fprintf(tw, "metric\t%s{%s} %g\n", p.Name, p.Attributes, p.Value)
	}
	return tw.Flush()
}
