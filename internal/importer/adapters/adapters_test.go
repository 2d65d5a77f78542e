package adapters_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/importer/adapters"
	"github.com/okian/seiseki/internal/importer/convert"
	"github.com/okian/seiseki/internal/lookup"
	"github.com/okian/seiseki/internal/repository"
	"github.com/okian/seiseki/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newConverter() *convert.Converter {
	return convert.New(lookup.NewResolver(repository.NewMemoryStore()))
}

func TestFervidexParse(t *testing.T) {
	Convey("Given a fervidex adapter", t, func() {
		ctx := context.Background()

		Convey("When the payload is valid", func() {
			a := adapters.NewFervidex(newConverter(), []byte(`{"scores": [{"chart": "spa", "entry_id": 1}]}`))
			it, err := a.Parse(ctx)
			So(err, ShouldBeNil)

			raw, ok, err := it.Next(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(raw, ShouldHaveSameTypeAs, &convert.FervidexScore{})

			_, ok, err = it.Next(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When the payload is not JSON", func() {
			a := adapters.NewFervidex(newConverter(), []byte(`{broken`))
			_, err := a.Parse(ctx)

			So(err, ShouldNotBeNil)
			So(convert.IsFatal(err), ShouldBeTrue)
		})

		Convey("When the payload has no scores field", func() {
			a := adapters.NewFervidex(newConverter(), []byte(`{}`))
			_, err := a.Parse(ctx)

			So(convert.IsFatal(err), ShouldBeTrue)
		})
	})
}

func TestMERParse(t *testing.T) {
	Convey("Given a MER adapter", t, func() {
		ctx := context.Background()

		Convey("When reading a valid export", func() {
			src := strings.NewReader(`[{"music_id": 1, "play_type": "SINGLE"}]`)
			it, err := adapters.NewMER(newConverter(), src).Parse(ctx)
			So(err, ShouldBeNil)

			raw, ok, err := it.Next(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(raw, ShouldHaveSameTypeAs, &convert.MERScore{})
		})

		Convey("When the export is malformed", func() {
			_, err := adapters.NewMER(newConverter(), strings.NewReader(`not json`)).Parse(ctx)
			So(convert.IsFatal(err), ShouldBeTrue)
		})
	})
}

func TestUSCParse(t *testing.T) {
	Convey("Given a USC adapter", t, func() {
		ctx := context.Background()

		Convey("When scores are inside the valid domain", func() {
			a := adapters.NewUSC(newConverter(), "hash", []byte(`[{"score": 9000000}]`))
			it, err := a.Parse(ctx)
			So(err, ShouldBeNil)

			_, ok, err := it.Next(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})

		Convey("When a score is outside the fixed domain", func() {
			a := adapters.NewUSC(newConverter(), "hash", []byte(`[{"score": 10000001}]`))
			_, err := a.Parse(ctx)

			Convey("Then the whole submission is rejected", func() {
				So(convert.IsFatal(err), ShouldBeTrue)
			})
		})

		Convey("When the chart hash is missing", func() {
			a := adapters.NewUSC(newConverter(), "", []byte(`[]`))
			_, err := a.Parse(ctx)
			So(convert.IsFatal(err), ShouldBeTrue)
		})
	})
}

func TestKaiSDVXTraversal(t *testing.T) {
	Convey("Given a paginated Kai API", t, func() {
		ctx := context.Background()

		var gotAuth string
		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		page := func(items []*convert.KaiSDVXScore, next string) []byte {
			body, _ := json.Marshal(map[string]interface{}{
				"_items": items,
				"_links": map[string]string{"_next": next},
			})
			return body
		}

		mux.HandleFunc("/api/sdvx/v1/play_history", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write(page([]*convert.KaiSDVXScore{
				{MusicID: 1}, {MusicID: 2},
			}, srv.URL+"/page2"))
		})
		mux.HandleFunc("/page2", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(page([]*convert.KaiSDVXScore{{MusicID: 3}}, ""))
		})

		adapter := adapters.NewKaiSDVX(newConverter(), srv.Client(), srv.URL, "secret-token", "FLO")

		Convey("When traversing the play history", func() {
			it, err := adapter.Parse(ctx)
			So(err, ShouldBeNil)

			var ids []int
			for {
				raw, ok, err := it.Next(ctx)
				So(err, ShouldBeNil)
				if !ok {
					break
				}
				ids = append(ids, raw.(*convert.KaiSDVXScore).MusicID)
			}

			Convey("Then every page's records arrive in order", func() {
				So(ids, ShouldResemble, []int{1, 2, 3})
			})

			Convey("Then the token is sent as a bearer credential", func() {
				So(gotAuth, ShouldEqual, "Bearer secret-token")
			})
		})

		Convey("When the endpoint does not exist", func() {
			bad := adapters.NewKaiSDVX(newConverter(), srv.Client(), srv.URL+"/missing", "secret-token", "FLO")

			_, err := bad.Parse(ctx)

			Convey("Then the import is fatal", func() {
				So(err, ShouldNotBeNil)
				So(convert.IsFatal(err), ShouldBeTrue)
			})
		})
	})
}

func TestAdapterMetadata(t *testing.T) {
	Convey("Given the adapter registry surface", t, func() {
		conv := newConverter()

		cases := []struct {
			adapter    adapters.Adapter
			importType string
			game       games.Game
		}{
			{adapters.NewFervidex(conv, nil), "ir/fervidex", games.IIDX},
			{adapters.NewMER(conv, strings.NewReader("[]")), "file/mer-iidx", games.IIDX},
			{adapters.NewUSC(conv, "h", nil), "ir/usc", games.USC},
			{adapters.NewKaiSDVX(conv, nil, "", "", "FLO"), "api/kai-sdvx", games.SDVX},
		}

		Convey("When inspecting each adapter", func() {
			for _, c := range cases {
				So(c.adapter.ImportType(), ShouldEqual, c.importType)
				So(c.adapter.Game(), ShouldEqual, c.game)
				So(games.IsSupported(c.adapter.Game()), ShouldBeTrue)
			}
		})
	})
}
