package lockbench

import (
	"context"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// MetricPoint 是一个扁平化的指标数据点。
// 计数器取累计值，直方图取样本数。
type MetricPoint struct {
	Name       string  `json:"name"`
	Attributes string  `json:"attributes,omitempty"`
	Value      float64 `json:"value"`
}

var attrEncoder = attribute.DefaultEncoder()

// collectMetrics 从 reader 读取一次快照并按名称、属性排序。
func collectMetrics(ctx context.Context, reader *sdkmetric.ManualReader) ([]MetricPoint, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	var points []MetricPoint
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					points = append(points, MetricPoint{
						Name:       m.Name,
						Attributes: dp.Attributes.Encoded(attrEncoder),
						Value:      float64(dp.Value),
					})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					points = append(points, MetricPoint{
						Name:       m.Name + ".count",
						Attributes: dp.Attributes.Encoded(attrEncoder),
						Value:      float64(dp.Count),
					})
				}
			}
		}
	}
	slices.SortFunc(points, func(a, b MetricPoint) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Attributes, b.Attributes)
	})
	return points, nil
}
