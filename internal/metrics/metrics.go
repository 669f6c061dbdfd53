// Package metrics собирает и публикует метрики Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthCollector : интерфейс сбора метрик аутентификации,
// используется обработчиками
type AuthCollector interface {
	RecordSignup()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordRefreshSuccess()
	RecordRefreshFailure()
	RecordRevocation()
}

// Collector регистрирует и инкрементирует счётчики
type Collector struct {
	signups        prometheus.Counter
	loginSuccess   prometheus.Counter
	loginFail      prometheus.Counter
	refreshSuccess prometheus.Counter
	refreshFail    prometheus.Counter
	revocations    prometheus.Counter
	httpStatus     *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "userman_signups_total",
			Help: "Количество успешных регистраций",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "userman_login_success_total",
			Help: "Количество успешных входов",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "userman_login_fail_total",
			Help: "Количество неудачных попыток входа",
		}),
		refreshSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "userman_token_refresh_success_total",
			Help: "Количество успешных обновлений пары токенов",
		}),
		refreshFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "userman_token_refresh_fail_total",
			Help: "Количество отклонённых обновлений пары токенов",
		}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "userman_token_revocations_total",
			Help: "Количество отзывов refresh токенов",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userman_http_status_total",
			Help: "Количество ответов по HTTP статус-кодам",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.signups,
		c.loginSuccess,
		c.loginFail,
		c.refreshSuccess,
		c.refreshFail,
		c.revocations,
		c.httpStatus,
	)

	return c
}

func (c *Collector) RecordSignup()         { c.signups.Inc() }
func (c *Collector) RecordLoginSuccess()   { c.loginSuccess.Inc() }
func (c *Collector) RecordLoginFailure()   { c.loginFail.Inc() }
func (c *Collector) RecordRefreshSuccess() { c.refreshSuccess.Inc() }
func (c *Collector) RecordRefreshFailure() { c.refreshFail.Inc() }
func (c *Collector) RecordRevocation()     { c.revocations.Inc() }

// Middleware считает ответы по статус-кодам
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		c.httpStatus.WithLabelValues(strconv.Itoa(recorder.status)).Inc()
	})
}

// Handler отдаёт метрики указанного реестра
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
