package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/wuimap/internal/adapters/chart"
	"github.com/okian/wuimap/internal/adapters/http/api"
	"github.com/okian/wuimap/internal/adapters/repository"
	service "github.com/okian/wuimap/internal/app"
	"github.com/okian/wuimap/internal/config"
	"github.com/okian/wuimap/internal/domain/animation"
	"github.com/okian/wuimap/internal/domain/frames"
	"github.com/okian/wuimap/internal/domain/model"
	"github.com/okian/wuimap/internal/domain/types"
	"github.com/okian/wuimap/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

// mockDependencies keeps one controller per session id in memory.
type mockDependencies struct {
	frames    []types.Frame
	ctrls     map[string]*animation.Controller
	nextID    int
	figure    []byte
	chartErr  error
	createErr error
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		frames: []types.Frame{
			{Index: 0, Month: "2020-01", Label: "January 2020"},
			{Index: 1, Month: "2020-02", Label: "February 2020"},
			{Index: 2, Month: "2020-03", Label: "March 2020"},
		},
		ctrls:  make(map[string]*animation.Controller),
		figure: []byte(`{"data":[],"layout":{},"frames":[]}`),
	}
}

func (m *mockDependencies) FigureJSON(context.Context) ([]byte, error) { return m.figure, nil }

func (m *mockDependencies) RenderExport(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, "<!doctype html><title>export</title>")
	return err
}

func (m *mockDependencies) Frame(_ context.Context, i int) (types.Frame, error) {
	if i < 0 || i >= len(m.frames) {
		return types.Frame{}, fmt.Errorf("%w: %d", frames.ErrFrameIndex, i)
	}
	return m.frames[i], nil
}

func (m *mockDependencies) view(id string) (types.Session, error) {
	c := m.ctrls[id]
	f, err := m.Frame(context.Background(), c.Index())
	return types.Session{ID: id, State: c.State(), Frame: f}, err
}

func (m *mockDependencies) CreateSession(context.Context) (types.Session, error) {
	if m.createErr != nil {
		return types.Session{}, m.createErr
	}
	c, err := animation.New(len(m.frames), len(m.frames)-1)
	if err != nil {
		return types.Session{}, err
	}
	m.nextID++
	id := fmt.Sprintf("s%d", m.nextID)
	m.ctrls[id] = c
	return m.view(id)
}

func (m *mockDependencies) Session(_ context.Context, id string) (types.Session, error) {
	if _, ok := m.ctrls[id]; !ok {
		return types.Session{}, repository.ErrNotFound
	}
	return m.view(id)
}

func (m *mockDependencies) Transition(_ context.Context, id string, a animation.Action, index int) (types.Session, error) {
	c, ok := m.ctrls[id]
	if !ok {
		return types.Session{}, repository.ErrNotFound
	}
	if err := c.Apply(a, index); err != nil {
		return types.Session{}, err
	}
	return m.view(id)
}

func (m *mockDependencies) CountryChart(_ context.Context, w io.Writer, code string) (int64, error) {
	if m.chartErr != nil {
		return 0, m.chartErr
	}
	n, err := io.WriteString(w, "\x89PNG"+code)
	return int64(n), err
}

func (m *mockDependencies) Page() types.Page {
	return types.Page{
		Title:          "IMF Uncertainty Index",
		Footer:         "Source: https://worlduncertaintyindex.com/",
		PlotlyJSURL:    "https://cdn.plot.ly/plotly-2.35.2.min.js",
		TickIntervalMS: 2000,
	}
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps api.Dependencies, stats api.StatsProvider) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stats).Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeSession(w *httptest.ResponseRecorder) types.Session {
	var s types.Session
	So(json.NewDecoder(w.Body).Decode(&s), ShouldBeNil)
	return s
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps, &mockStatsProvider{stats: map[string]interface{}{"frames": 3}})

		Convey("Then the dashboard is served at the root", func() {
			w := do(mux, http.MethodGet, "/", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := w.Body.String()
			So(body, ShouldContainSubstring, "<title>IMF Uncertainty Index</title>")
			So(body, ShouldContainSubstring, `id="slider"`)
			So(body, ShouldContainSubstring, `id="play"`)
			So(body, ShouldContainSubstring, "worlduncertaintyindex.com")
		})

		Convey("Then the page always releases its request guard and replays a queued seek", func() {
			body := do(mux, http.MethodGet, "/", "").Body.String()
			So(body, ShouldContainSubstring, ".finally(function () {")
			So(body, ShouldContainSubstring, `if (action === "seek") { pendingSeek = body; }`)
			So(body, ShouldContainSubstring, `transition("seek", next);`)
		})

		Convey("Then unknown paths are not found", func() {
			So(do(mux, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then the health endpoint exposes metrics", func() {
			So(do(mux, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats are returned as JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.NewDecoder(w.Body).Decode(&stats), ShouldBeNil)
			So(stats["frames"], ShouldEqual, float64(3))
		})

		Convey("Then the figure is returned verbatim", func() {
			w := do(mux, http.MethodGet, "/figure.json", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, string(deps.figure))
		})

		Convey("Then the export is offered as a download", func() {
			w := do(mux, http.MethodGet, "/export", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, api.ExportFilename)
			So(w.Body.String(), ShouldStartWith, "<!doctype html>")
		})

		Convey("Then the wrong method is rejected", func() {
			So(do(mux, http.MethodPost, "/figure.json", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestFrameHandler(t *testing.T) {
	Convey("Given a frame handler", t, func() {
		mux := newMux(newMockDependencies(), &mockStatsProvider{})

		Convey("When requesting an existing frame", func() {
			w := do(mux, http.MethodGet, "/api/frames/1", "")

			Convey("Then the frame is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var f types.Frame
				So(json.NewDecoder(w.Body).Decode(&f), ShouldBeNil)
				So(f.Label, ShouldEqual, "February 2020")
			})
		})

		Convey("When the index is out of range", func() {
			So(do(mux, http.MethodGet, "/api/frames/9", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the index is not a number", func() {
			w := do(mux, http.MethodGet, "/api/frames/abc", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
			})
		})
	})
}

func TestSessionHandler(t *testing.T) {
	Convey("Given a session created through the API", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps, &mockStatsProvider{})

		w := do(mux, http.MethodPost, "/api/sessions", "")
		So(w.Code, ShouldEqual, http.StatusCreated)
		sess := decodeSession(w)
		base := "/api/sessions/" + sess.ID

		Convey("Then it opens paused on the last frame", func() {
			So(sess.State, ShouldResemble, animation.State{Index: 2, Count: 3})
			So(sess.Frame.Label, ShouldEqual, "March 2020")
		})

		Convey("When playing and ticking", func() {
			So(do(mux, http.MethodPost, base+"/play", "").Code, ShouldEqual, http.StatusOK)
			w := do(mux, http.MethodPost, base+"/tick", "")

			Convey("Then the index wraps to the first frame", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				got := decodeSession(w)
				So(got.State.Index, ShouldEqual, 0)
				So(got.State.Playing, ShouldBeTrue)
				So(got.Frame.Month, ShouldEqual, "2020-01")
			})

			Convey("Then pause stops further ticks", func() {
				So(do(mux, http.MethodPost, base+"/pause", "").Code, ShouldEqual, http.StatusOK)
				got := decodeSession(do(mux, http.MethodPost, base+"/tick", ""))
				So(got.State.Index, ShouldEqual, 0)
				So(got.State.Playing, ShouldBeFalse)
			})
		})

		Convey("When seeking", func() {
			w := do(mux, http.MethodPost, base+"/seek", `{"index":1}`)

			Convey("Then the requested frame is shown", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeSession(w).Frame.Label, ShouldEqual, "February 2020")
			})
		})

		Convey("When seeking out of range", func() {
			So(do(mux, http.MethodPost, base+"/seek", `{"index":7}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When seeking without an index", func() {
			So(do(mux, http.MethodPost, base+"/seek", `{}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When seeking with a malformed body", func() {
			So(do(mux, http.MethodPost, base+"/seek", `{"index":`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the action is unknown", func() {
			So(do(mux, http.MethodPost, base+"/rewind", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When reading it back", func() {
			w := do(mux, http.MethodGet, base, "")

			Convey("Then the state is unchanged", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeSession(w).State, ShouldResemble, sess.State)
			})
		})

		Convey("When the session does not exist", func() {
			w := do(mux, http.MethodPost, "/api/sessions/missing/tick", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
			})
		})
	})

	Convey("Given a store at its session limit", t, func() {
		deps := newMockDependencies()
		deps.createErr = repository.ErrStoreFull
		mux := newMux(deps, &mockStatsProvider{})

		Convey("Then new sessions are refused", func() {
			So(do(mux, http.MethodPost, "/api/sessions", "").Code, ShouldEqual, http.StatusTooManyRequests)
		})
	})
}

func TestChartHandler(t *testing.T) {
	Convey("Given a chart handler", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps, &mockStatsProvider{})

		Convey("When the country exists", func() {
			w := do(mux, http.MethodGet, "/api/countries/USA/chart.png", "")

			Convey("Then a PNG is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
				So(w.Body.String(), ShouldEqual, "\x89PNGUSA")
			})
		})

		Convey("When the country is unknown", func() {
			deps.chartErr = chart.ErrUnknownCountry
			So(do(mux, http.MethodGet, "/api/countries/XXX/chart.png", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When drawing fails", func() {
			deps.chartErr = errors.New("disk full")
			So(do(mux, http.MethodGet, "/api/countries/USA/chart.png", "").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestServerWithService(t *testing.T) {
	Convey("Given the API backed by a started service", t, func() {
		table := model.WideTable{
			Countries: []string{"A", "B"},
			Rows: []model.WideRow{
				{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Values: []model.Cell{model.Float(0.5), model.Float(0.9)}},
				{Date: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), Values: []model.Cell{model.Float(1.5), model.Null()}},
			},
		}
		svc := service.New(service.WithConfig(config.New()), service.WithTable(table))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc, svc)

		Convey("When a session is created and seeked to January", func() {
			sess := decodeSession(do(mux, http.MethodPost, "/api/sessions", ""))
			w := do(mux, http.MethodPost, "/api/sessions/"+sess.ID+"/seek", `{"index":0}`)

			Convey("Then the January frame is drawn for both countries", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				got := decodeSession(w)
				So(got.Frame.Label, ShouldEqual, "January 2020")
				So(got.Frame.Trace.Locations, ShouldResemble, []string{"A", "B"})
			})
		})

		Convey("When the February frame is requested", func() {
			w := do(mux, http.MethodGet, "/api/frames/1", "")

			Convey("Then only A is present and its color is capped", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var f types.Frame
				So(json.NewDecoder(w.Body).Decode(&f), ShouldBeNil)
				So(f.Trace.Locations, ShouldResemble, []string{"A"})
				So(f.Trace.Z, ShouldResemble, []float64{1.3})
				So(f.Trace.CustomData, ShouldResemble, []float64{1.5})
			})
		})

		Convey("When the export is downloaded", func() {
			w := do(mux, http.MethodGet, "/export", "")

			Convey("Then autoplay is off", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "var autoplay = false;")
			})
		})
	})
}
