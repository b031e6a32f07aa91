package metrics

import "github.com/prometheus/client_golang/prometheus"

func (m *Metrics) TravelEstimates() *prometheus.CounterVec   { return m.travelEstimates }
func (m *Metrics) SchedulingResults() *prometheus.CounterVec { return m.schedulingResult }
func (m *Metrics) BreakerState() *prometheus.GaugeVec        { return m.breakerState }
