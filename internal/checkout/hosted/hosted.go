// Package hosted serves the gateway checkout page from a one-shot local
// HTTP server and relays the page's callbacks to checkout.Handlers.
package hosted

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ngoledger/internal/checkout"
	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
)

const DefaultScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

var page = template.Must(template.New("checkout").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<p id="status">Opening checkout&hellip;</p>
<script src="{{.ScriptURL}}"></script>
<script>
(function () {
  var options = {{.Options}};
  function send(path, body) {
    return fetch(path, {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify(body || {})})
      .then(function () { document.getElementById("status").textContent = "You can close this window."; });
  }
  options.handler = function (resp) {
    send("complete", {
      razorpay_payment_id: resp.razorpay_payment_id,
      razorpay_order_id: resp.razorpay_order_id,
      razorpay_signature: resp.razorpay_signature
    });
  };
  options.modal = {ondismiss: function () { send("dismiss"); }};
  var rzp = new Razorpay(options);
  rzp.on("payment.failed", function (resp) { send("failed", resp.error); });
  rzp.open();
})();
</script>
</body>
</html>
`))

// Options configures the hosted widget.
type Options struct {
	// Addr is the listen address, 127.0.0.1:0 when empty.
	Addr      string
	ScriptURL string
	// Launch is called with the page URL once the server is listening,
	// typically to open a browser. When nil the URL is only logged.
	Launch func(url string) error
	Logger *infra.Logger
}

// Widget implements checkout.Widget with a browser page.
type Widget struct {
	opts   Options
	logger *infra.Logger
}

func New(opts Options) *Widget {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}
	if opts.ScriptURL == "" {
		opts.ScriptURL = DefaultScriptURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Widget{opts: opts, logger: logger}
}

// Open starts the page server and returns. The server stops after the
// first callback, or when ctx is done, which counts as a dismissal.
func (w *Widget) Open(ctx context.Context, opts checkout.Options, h checkout.Handlers) error {
	ln, err := net.Listen("tcp", w.opts.Addr)
	if err != nil {
		return fmt.Errorf("hosted: listen: %w", err)
	}
	s := &attempt{opts: opts, handlers: h, scriptURL: w.opts.ScriptURL, logger: w.logger, done: make(chan struct{})}
	srv := &http.Server{Handler: s.routes(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error().Err(err).Msg("hosted: serve failed")
		}
	}()
	go func() {
		select {
		case <-s.done:
		case <-ctx.Done():
			s.settle(func() {
				if h.OnDismiss != nil {
					h.OnDismiss()
				}
			})
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := "http://" + ln.Addr().String() + "/"
	w.logger.Info().Str("url", url).Str("order_id", opts.OrderID).Msg("checkout page ready")
	if w.opts.Launch != nil {
		if err := w.opts.Launch(url); err != nil {
			w.logger.Warn().Err(err).Str("url", url).Msg("hosted: launch failed, open the url manually")
		}
	}
	return nil
}

type attempt struct {
	opts      checkout.Options
	handlers  checkout.Handlers
	scriptURL string
	logger    *infra.Logger

	once sync.Once
	done chan struct{}
}

func (a *attempt) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", a.page)
	r.Post("/complete", a.complete)
	r.Post("/failed", a.failed)
	r.Post("/dismiss", a.dismiss)
	return r
}

// settle runs fn for the first callback only.
func (a *attempt) settle(fn func()) bool {
	ran := false
	a.once.Do(func() {
		ran = true
		defer close(a.done)
		fn()
	})
	return ran
}

func (a *attempt) page(w http.ResponseWriter, r *http.Request) {
	raw, err := json.Marshal(a.opts)
	if err != nil {
		http.Error(w, "encode options", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	data := struct {
		Title     string
		ScriptURL string
		Options   template.JS
	}{Title: a.opts.Name, ScriptURL: a.scriptURL, Options: template.JS(raw)}
	if err := page.Execute(w, data); err != nil {
		a.logger.Error().Err(err).Msg("hosted: render page failed")
	}
}

func (a *attempt) complete(w http.ResponseWriter, r *http.Request) {
	var conf domain.PaymentConfirmation
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&conf); err != nil || !conf.Complete() {
		http.Error(w, "missing payment details", http.StatusBadRequest)
		return
	}
	a.settle(func() {
		if a.handlers.OnComplete != nil {
			a.handlers.OnComplete(conf)
		}
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *attempt) failed(w http.ResponseWriter, r *http.Request) {
	var fl checkout.Failure
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&fl)
	a.settle(func() {
		if a.handlers.OnFail != nil {
			a.handlers.OnFail(fl)
		}
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *attempt) dismiss(w http.ResponseWriter, r *http.Request) {
	a.settle(func() {
		if a.handlers.OnDismiss != nil {
			a.handlers.OnDismiss()
		}
	})
	w.WriteHeader(http.StatusNoContent)
}
