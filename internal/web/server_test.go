package web

import (
	"context"
	"errors"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/objetivos/internal/db"
	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/alexanderramin/objetivos/internal/repository"
	"github.com/alexanderramin/objetivos/internal/service"
	"github.com/alexanderramin/objetivos/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenRe    = regexp.MustCompile(`name="token" value="([^"]+)"`)
	inputRe    = regexp.MustCompile(`name="(r[0-9]+\.[a-z_]+)" value="([^"]*)"`)
	textareaRe = regexp.MustCompile(`(?s)<textarea name="(r[0-9]+\.[a-z_]+)" rows="1">\n(.*?)</textarea>`)
)

// textareaHTML is the markup of a multi-line cell holding value.
func textareaHTML(name, value string) string {
	return `<textarea name="` + name + `" rows="1">` + "\n" + value + `</textarea>`
}

type webEnv struct {
	db     *db.DB
	srv    *httptest.Server
	store  *SnapshotStore
	client *http.Client
}

func newWebEnv(t *testing.T, database *db.DB) *webEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	areas := service.NewAreaService(
		repository.NewSQLAreaRepo(database, database.Dialect),
		testutil.NewTestUoW(database),
		database.Dialect,
		service.NewMetricsObserver(reg),
	)
	store := NewSnapshotStore(time.Hour, 8)
	srv := httptest.NewServer(NewRouter(Options{
		Areas:   areas,
		DB:      database,
		Store:   store,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}))
	t.Cleanup(srv.Close)

	client := srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return &webEnv{db: database, srv: srv, store: store, client: client}
}

func (e *webEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *webEnv) post(t *testing.T, form url.Values) (int, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+"/save", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// formFromPage rebuilds the form a browser would submit for page unchanged.
func formFromPage(t *testing.T, page string) url.Values {
	t.Helper()
	m := tokenRe.FindStringSubmatch(page)
	require.NotNil(t, m, "page has no token")
	form := url.Values{"token": {m[1]}}
	for _, in := range inputRe.FindAllStringSubmatch(page, -1) {
		form.Set(in[1], html.UnescapeString(in[2]))
	}
	// Browsers submit textarea line breaks as CRLF.
	for _, ta := range textareaRe.FindAllStringSubmatch(page, -1) {
		form.Set(ta[1], strings.ReplaceAll(html.UnescapeString(ta[2]), "\n", "\r\n"))
	}
	return form
}

func seedTwoRows(t *testing.T, database *db.DB) {
	t.Helper()
	testutil.SeedRow(t, database, testutil.WithID(1), testutil.WithArea("TI"), testutil.WithResponsavel("Ana"),
		testutil.WithPeriodo(testutil.Date(2025, 1, 1), testutil.Date(2025, 6, 30)))
	testutil.SeedRow(t, database, testutil.WithID(2), testutil.WithArea("RH"))
}

func TestIndex_RendersGrid(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	env := newWebEnv(t, database)

	status, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Edição de Áreas e Objetivos")
	assert.Contains(t, body, "<th>Responsável</th>")
	assert.Contains(t, body, `<td>TI</td>`, "non-editable columns are shown read-only")
	assert.Contains(t, body, `type="date" name="r1.periodo_inicio" value="2025-01-01"`)
	assert.Contains(t, body, textareaHTML("r2.objetivo", ""))
	assert.NotContains(t, body, `name="r1.area"`)
	assert.Equal(t, 1, env.store.Len())
}

func TestIndex_EmptyTableWarns(t *testing.T) {
	env := newWebEnv(t, testutil.NewTestDB(t))

	status, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Não há dados ou a tabela")
	assert.NotContains(t, body, "Salvar alterações")
	assert.Zero(t, env.store.Len())
}

func TestIndex_MissingTableIsUnavailable(t *testing.T) {
	env := newWebEnv(t, testutil.NewBareTestDB(t))

	status, body := env.get(t, "/")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "Erro ao carregar dados da tabela")
	assert.Contains(t, body, "does not exist")
}

func TestIndex_UnreachableDatabaseIsUnavailable(t *testing.T) {
	env := newWebEnv(t, testutil.NewUnreachableDB(t))

	status, body := env.get(t, "/")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "Não foi possível conectar ao banco de dados")
	assert.NotContains(t, body, "Salvar alterações")

	// The server keeps answering.
	status, _ = env.get(t, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	status, _ = env.get(t, "/")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestSave_PersistsChangedField(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	env := newWebEnv(t, database)

	_, page := env.get(t, "/")
	form := formFromPage(t, page)
	form.Set("r2.objetivo", "Launch v2")

	status, body := env.post(t, form)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "✅ 1 alteração(ões) salva(s)!")
	assert.Contains(t, body, textareaHTML("r2.objetivo", "Launch v2"), "grid is reloaded after save")

	var objetivo string
	require.NoError(t, database.QueryRow(`SELECT objetivo FROM areas_objetivos WHERE id = 2`).Scan(&objetivo))
	assert.Equal(t, "Launch v2", objetivo)
	assert.Equal(t, 1, env.store.Len(), "old token is dropped, reloaded grid gets a new one")
}

func TestSave_UnchangedFormReportsNoChanges(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	testutil.SeedRow(t, database, testutil.WithID(3), testutil.WithRawPeriodoInicio("01/02/2025"))
	env := newWebEnv(t, database)

	_, page := env.get(t, "/")
	assert.Contains(t, page, `type="text" name="r3.periodo_inicio" value="01/02/2025"`)

	status, body := env.post(t, formFromPage(t, page))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Nenhuma modificação detectada.")
}

func TestSave_UntouchedMultilineTextIsKept(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedRow(t, database, testutil.WithID(1), testutil.WithObjetivo("linha1\nlinha2"))
	testutil.SeedRow(t, database, testutil.WithID(2), testutil.WithObjetivo("\nrecuo\tcom tab"))
	env := newWebEnv(t, database)

	_, page := env.get(t, "/")
	assert.Contains(t, page, textareaHTML("r1.objetivo", "linha1\nlinha2"))
	form := formFromPage(t, page)
	assert.Equal(t, "linha1\r\nlinha2", form.Get("r1.objetivo"))
	assert.Equal(t, "\r\nrecuo\tcom tab", form.Get("r2.objetivo"), "leading line break survives the textarea")

	status, body := env.post(t, form)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Nenhuma modificação detectada.")
	assert.NotContains(t, body, "salva(s)")

	var first, second string
	require.NoError(t, database.QueryRow(`SELECT objetivo FROM areas_objetivos WHERE id = 1`).Scan(&first))
	require.NoError(t, database.QueryRow(`SELECT objetivo FROM areas_objetivos WHERE id = 2`).Scan(&second))
	assert.Equal(t, "linha1\nlinha2", first)
	assert.Equal(t, "\nrecuo\tcom tab", second)
}

func TestSave_MultilineEditIsStoredWithLF(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	env := newWebEnv(t, database)

	_, page := env.get(t, "/")
	form := formFromPage(t, page)
	form.Set("r2.objetivo", "meta 1\r\nmeta 2")

	_, body := env.post(t, form)
	assert.Contains(t, body, "✅ 1 alteração(ões) salva(s)!")
	assert.Contains(t, body, textareaHTML("r2.objetivo", "meta 1\nmeta 2"))

	var objetivo string
	require.NoError(t, database.QueryRow(`SELECT objetivo FROM areas_objetivos WHERE id = 2`).Scan(&objetivo))
	assert.Equal(t, "meta 1\nmeta 2", objetivo)
}

func TestSave_DateEditAndClear(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	env := newWebEnv(t, database)

	_, page := env.get(t, "/")
	form := formFromPage(t, page)
	form.Set("r1.periodo_fim", "2025-12-31")
	form.Set("r1.responsavel", "")

	_, body := env.post(t, form)
	assert.Contains(t, body, "✅ 2 alteração(ões) salva(s)!")

	var fim string
	var responsavelIsNull bool
	require.NoError(t, database.QueryRow(
		`SELECT CAST(periodo_fim AS TEXT), responsavel IS NULL FROM areas_objetivos WHERE id = 1`,
	).Scan(&fim, &responsavelIsNull))
	assert.Equal(t, "2025-12-31", fim)
	assert.True(t, responsavelIsNull)
}

func TestSave_InvalidDateWritesNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	env := newWebEnv(t, database)

	_, page := env.get(t, "/")
	form := formFromPage(t, page)
	form.Set("r1.objetivo", "valid change")
	form.Set("r2.periodo_fim", "31/12/2025")

	status, body := env.post(t, form)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "Valor inválido em Período Fim (id 2)")
	assert.Contains(t, body, `name="r2.periodo_fim" value="31/12/2025" class="invalid"`)
	assert.Contains(t, body, textareaHTML("r1.objetivo", "valid change"), "other edits are kept on the page")

	var isNull bool
	require.NoError(t, database.QueryRow(`SELECT objetivo IS NULL FROM areas_objetivos WHERE id = 1`).Scan(&isNull))
	assert.True(t, isNull)

	form = formFromPage(t, body)
	form.Set("r2.periodo_fim", "2025-12-31")
	status, body = env.post(t, form)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "✅ 2 alteração(ões) salva(s)!")
}

func TestSave_ExpiredTokenReloads(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	env := newWebEnv(t, database)

	status, body := env.post(t, url.Values{"token": {"stale"}, "r1.objetivo": {"x"}})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "A sessão de edição expirou")

	var isNull bool
	require.NoError(t, database.QueryRow(`SELECT objetivo IS NULL FROM areas_objetivos WHERE id = 1`).Scan(&isNull))
	assert.True(t, isNull)
}

func TestSave_HostileValueStoredLiterally(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	env := newWebEnv(t, database)

	_, page := env.get(t, "/")
	form := formFromPage(t, page)
	hostile := "x'; UPDATE areas_objetivos SET area = 'pwned'; --"
	form.Set("r1.objetivo", hostile)
	form.Set("r1.area", "pwned")

	_, body := env.post(t, form)
	assert.Contains(t, body, "✅ 1 alteração(ões) salva(s)!")

	var objetivo, area string
	require.NoError(t, database.QueryRow(`SELECT objetivo, area FROM areas_objetivos WHERE id = 1`).Scan(&objetivo, &area))
	assert.Equal(t, hostile, objetivo)
	assert.Equal(t, "TI", area)
}

func TestSave_PartialFailureIsReported(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	store := NewSnapshotStore(time.Hour, 8)
	areas := service.NewAreaService(
		repository.NewSQLAreaRepo(database, database.Dialect),
		&testutil.FailOnNthExecUoW{DB: database, FailOn: 1, Err: errors.New("lock timeout")},
		database.Dialect,
	)
	h := NewRouter(Options{Areas: areas, DB: database, Store: store})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	form := formFromPage(t, rec.Body.String())
	form.Set("r1.responsavel", "Bia")
	form.Set("r2.responsavel", "Caio")

	req := httptest.NewRequest(http.MethodPost, "/save", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "✅ 1 alteração(ões) salva(s)!")
	assert.Contains(t, body, "Falha ao salvar Responsável (id 1)")
	assert.Contains(t, body, "lock timeout")
	assert.Contains(t, body, textareaHTML("r2.responsavel", "Caio"))
}

func TestReload_RedirectsAndDropsToken(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	env := newWebEnv(t, database)

	_, page := env.get(t, "/")
	token := tokenRe.FindStringSubmatch(page)[1]

	resp, err := env.client.Get(env.srv.URL + "/reload?token=" + token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	_, ok := env.store.Get(token)
	assert.False(t, ok)
}

func TestHealthz(t *testing.T) {
	database := testutil.NewTestDB(t)
	env := newWebEnv(t, database)

	status, body := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok\n", body)

	require.NoError(t, database.Close())
	status, _ = env.get(t, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestMetricsEndpoint(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedTwoRows(t, database)
	env := newWebEnv(t, database)

	env.get(t, "/")
	status, body := env.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `objetivos_use_case_total{outcome="success",use_case="load"} 1`)
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return domain.ErrConnectionFailed }

func TestHealthz_PingerError(t *testing.T) {
	h := NewRouter(Options{DB: failingPinger{}, Store: NewSnapshotStore(time.Minute, 1)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "metrics route is optional")
}
