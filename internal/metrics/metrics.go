package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors for one launch. Each launch gets its own
// registry; the result is written to a textfile for node-exporter since
// the launcher does not live long enough to be scraped.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	launches      prometheus.Counter
	setupFailures *prometheus.CounterVec
	degraded      *prometheus.CounterVec
	exitCode      prometheus.Gauge
	isolated      prometheus.Gauge
	setupSeconds  prometheus.Gauge
	runSeconds    prometheus.Gauge
	lastExit      prometheus.Gauge
}

// New creates a Recorder labelled with the wrapped target's name.
func New(target string) *Recorder {
	labels := prometheus.Labels{"target": target}
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		launches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "launchstub",
			Name:        "launches_total",
			Help:        "Number of launch attempts.",
			ConstLabels: labels,
		}),
		setupFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "launchstub",
			Name:        "setup_failures_total",
			Help:        "Fatal setup failures by failing operation.",
			ConstLabels: labels,
		}, []string{"op"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "launchstub",
			Name:        "degraded_total",
			Help:        "Non-fatal isolation failures by operation.",
			ConstLabels: labels,
		}, []string{"op"}),
		exitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "launchstub",
			Subsystem:   "child",
			Name:        "exit_code",
			Help:        "Exit code of the wrapped program.",
			ConstLabels: labels,
		}),
		isolated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "launchstub",
			Subsystem:   "child",
			Name:        "isolated",
			Help:        "1 if the child ran inside an isolation group.",
			ConstLabels: labels,
		}),
		setupSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "launchstub",
			Name:        "setup_duration_seconds",
			Help:        "Time from launcher start until the child was spawned.",
			ConstLabels: labels,
		}),
		runSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "launchstub",
			Subsystem:   "child",
			Name:        "run_duration_seconds",
			Help:        "Wall time the wrapped program ran.",
			ConstLabels: labels,
		}),
		lastExit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "launchstub",
			Subsystem:   "child",
			Name:        "last_exit_timestamp_seconds",
			Help:        "Unix time the wrapped program exited.",
			ConstLabels: labels,
		}),
	}
	r.reg.MustRegister(r.launches, r.setupFailures, r.degraded, r.exitCode,
		r.isolated, r.setupSeconds, r.runSeconds, r.lastExit)
	return r
}

// Registry exposes the underlying registry for tests and custom export.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

func (r *Recorder) IncLaunch() {
	if r != nil {
		r.launches.Inc()
	}
}

func (r *Recorder) IncSetupFailure(op string) {
	if r != nil {
		r.setupFailures.WithLabelValues(op).Inc()
	}
}

func (r *Recorder) IncDegraded(op string) {
	if r != nil {
		r.degraded.WithLabelValues(op).Inc()
	}
}

func (r *Recorder) ObserveSetup(d time.Duration) {
	if r != nil {
		r.setupSeconds.Set(d.Seconds())
	}
}

// ObserveExit records the child's result.
func (r *Recorder) ObserveExit(code int, run time.Duration, isolated bool, at time.Time) {
	if r == nil {
		return
	}
	r.exitCode.Set(float64(code))
	r.runSeconds.Set(run.Seconds())
	if isolated {
		r.isolated.Set(1)
	} else {
		r.isolated.Set(0)
	}
	r.lastExit.Set(float64(at.Unix()))
}

// WriteTextfile atomically writes the collected metrics in the text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
