package stubserver

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molinosatl/invdash/internal/api"
	"github.com/molinosatl/invdash/internal/models"
	"github.com/molinosatl/invdash/internal/report"
	"github.com/molinosatl/invdash/internal/session"
)

// newTestServer starts the stub over an in-memory database and returns a
// client already logged in as the seeded administrator. Driving the stub
// through the real client keeps both sides of the wire honest.
func newTestServer(t *testing.T) (*httptest.Server, *api.Client, session.Store) {
	t.Helper()

	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	// The pool must stay on one connection or each new connection would
	// get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, SeedAdmin(db, "admin", "admin123"))

	ts := httptest.NewServer(New(db, nil).Router())
	t.Cleanup(ts.Close)

	sess, err := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	client := api.New(ts.URL, sess)

	_, err = client.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	return ts, client, sess
}

// seedCatalogs creates the minimum reference data an employee and a
// product need, returning the catalog ids keyed by tipo.
func seedCatalogs(t *testing.T, client *api.Client) map[models.CatalogTipo]int {
	t.Helper()
	ctx := context.Background()
	ids := make(map[models.CatalogTipo]int)
	names := map[models.CatalogTipo]string{
		models.CatalogAreas:       "Sistemas",
		models.CatalogEmpresas:    "Molinos",
		models.CatalogCargos:      "Analista",
		models.CatalogEquipoTipos: "Portátil",
		models.CatalogCiudades:    "Barranquilla",
	}
	for tipo, nombre := range names {
		item, err := client.CreateCatalogItem(ctx, tipo, models.CatalogInput{Nombre: nombre})
		require.NoError(t, err)
		ids[tipo] = item.ID
	}
	return ids
}

func seedEmpleado(t *testing.T, client *api.Client, ids map[models.CatalogTipo]int, nombre string) *models.Empleado {
	t.Helper()
	e, err := client.CreateEmpleado(context.Background(), models.EmpleadoInput{
		Nombre:    nombre,
		AreaID:    ids[models.CatalogAreas],
		CargoID:   ids[models.CatalogCargos],
		EmpresaID: ids[models.CatalogEmpresas],
		CiudadID:  ids[models.CatalogCiudades],
	})
	require.NoError(t, err)
	return e
}

func seedProducto(t *testing.T, client *api.Client, ids map[models.CatalogTipo]int, marca, serial string) *models.Producto {
	t.Helper()
	p, err := client.CreateProducto(context.Background(), models.ProductoInput{
		Marca:          marca,
		Serial:         serial,
		TipoProductoID: ids[models.CatalogEquipoTipos],
	})
	require.NoError(t, err)
	return p
}

func TestLogin(t *testing.T) {
	ts, _, _ := newTestServer(t)

	t.Run("valid credentials", func(t *testing.T) {
		sess, err := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)
		client := api.New(ts.URL, sess)

		u, err := client.Login(context.Background(), "admin", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "admin", u.Username)
		assert.True(t, u.IsAdmin)
		assert.True(t, sess.IsAuthenticated())
	})

	t.Run("wrong password", func(t *testing.T) {
		sess, err := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)
		client := api.New(ts.URL, sess)

		_, err = client.Login(context.Background(), "admin", "nope")
		require.Error(t, err)
		assert.True(t, api.IsAuth(err))
		assert.EqualError(t, err, "Credenciales incorrectas")
		assert.False(t, sess.IsAuthenticated())
	})
}

func TestRequireAuth(t *testing.T) {
	ts, _, _ := newTestServer(t)

	for _, path := range []string{"/empleados/", "/productos/", "/inventory/", "/users/me"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAdminGate(t *testing.T) {
	ts, admin, _ := newTestServer(t)
	ctx := context.Background()

	_, err := admin.CreateUser(ctx, models.UserInput{
		Username: "consulta",
		Password: "secreto1",
		FullName: "Cuenta de consulta",
	})
	require.NoError(t, err)

	sess, err := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	viewer := api.New(ts.URL, sess)
	u, err := viewer.Login(ctx, "consulta", "secreto1")
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)

	// A regular account keeps read access but not user administration.
	_, err = viewer.Me(ctx)
	assert.NoError(t, err)
	_, err = viewer.Users(ctx)
	require.Error(t, err)
	assert.EqualError(t, err, "Operación no permitida")
}

func TestCatalogCRUD(t *testing.T) {
	_, client, _ := newTestServer(t)
	ctx := context.Background()

	item, err := client.CreateCatalogItem(ctx, models.CatalogAreas, models.CatalogInput{Nombre: "Logística"})
	require.NoError(t, err)

	_, err = client.CreateCatalogItem(ctx, models.CatalogAreas, models.CatalogInput{Nombre: "Logística"})
	require.Error(t, err)
	assert.True(t, api.IsDuplicate(err))

	// The same name in a different catalog is not a duplicate.
	_, err = client.CreateCatalogItem(ctx, models.CatalogCargos, models.CatalogInput{Nombre: "Logística"})
	assert.NoError(t, err)

	renamed, err := client.UpdateCatalogItem(ctx, models.CatalogAreas, item.ID, models.CatalogInput{Nombre: "Logística y Transporte"})
	require.NoError(t, err)
	assert.Equal(t, "Logística y Transporte", renamed.Nombre)

	items, err := client.Catalog(ctx, models.CatalogAreas)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Logística y Transporte", items[0].Nombre)

	require.NoError(t, client.DeleteCatalogItem(ctx, models.CatalogAreas, item.ID))

	err = client.DeleteCatalogItem(ctx, models.CatalogAreas, item.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "Recurso no encontrado")
}

func TestEmpleadoLifecycle(t *testing.T) {
	_, client, _ := newTestServer(t)
	ctx := context.Background()
	ids := seedCatalogs(t, client)

	e := seedEmpleado(t, client, ids, "Carlos Pérez")
	assert.Equal(t, "Sistemas", e.Area)
	assert.Equal(t, "Analista", e.Cargo)
	assert.Equal(t, models.EstadoActivo, e.Estado())

	seedEmpleado(t, client, ids, "Ana Gómez")

	found, err := client.Empleados(ctx, "pérez")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, e.ID, found[0].ID)

	require.NoError(t, client.RetirarEmpleado(ctx, e.ID))
	got, err := client.Empleado(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EstadoRetirado, got.Estado())
	assert.NotEmpty(t, got.FechaRetiro)

	require.NoError(t, client.ActivarEmpleado(ctx, e.ID))
	got, err = client.Empleado(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EstadoActivo, got.Estado())
	assert.Empty(t, got.FechaRetiro)

	err = client.RetirarEmpleado(ctx, 9999)
	require.Error(t, err)
	assert.EqualError(t, err, "Recurso no encontrado")
}

func TestProductoLifecycle(t *testing.T) {
	_, client, _ := newTestServer(t)
	ctx := context.Background()
	ids := seedCatalogs(t, client)

	p := seedProducto(t, client, ids, "Lenovo", "SN-001")
	assert.Equal(t, "Portátil", p.TipoProducto)

	updated, err := client.UpdateProducto(ctx, p.ID, models.ProductoInput{
		Marca:          p.Marca,
		Serial:         p.Serial,
		Ram:            "16GB",
		TipoProductoID: ids[models.CatalogEquipoTipos],
	})
	require.NoError(t, err)
	assert.Equal(t, "16GB", updated.Ram)

	seedProducto(t, client, ids, "Dell", "SN-002")
	found, err := client.Productos(ctx, "sn-001")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p.ID, found[0].ID)

	require.NoError(t, client.RetirarProducto(ctx, p.ID))
	got, err := client.Producto(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EstadoRetirado, got.Estado())
}

func TestAsignaciones(t *testing.T) {
	_, client, _ := newTestServer(t)
	ctx := context.Background()
	ids := seedCatalogs(t, client)
	e := seedEmpleado(t, client, ids, "Carlos Pérez")
	p1 := seedProducto(t, client, ids, "Lenovo", "SN-001")
	p2 := seedProducto(t, client, ids, "Dell", "SN-002")

	a, err := client.CreateAsignacion(ctx, models.AsignacionInput{
		EmpleadoID:   e.ID,
		ProductoID:   p1.ID,
		QuienEntrega: "Bodega",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, a.FechaEntrega)
	require.NotNil(t, a.Empleado)
	assert.Equal(t, "Carlos Pérez", a.Empleado.Nombre)

	// Assigning the same product again while active is a duplicate.
	_, err = client.CreateAsignacion(ctx, models.AsignacionInput{EmpleadoID: e.ID, ProductoID: p1.ID})
	require.Error(t, err)
	assert.True(t, api.IsDuplicate(err))
	assert.EqualError(t, err, "El empleado ya tiene asignado este producto")

	_, err = client.CreateAsignacion(ctx, models.AsignacionInput{EmpleadoID: e.ID, ProductoID: 9999})
	require.Error(t, err)
	assert.EqualError(t, err, "El producto no existe o está retirado")

	res := client.AssignProductos(ctx, models.AsignacionInput{EmpleadoID: e.ID}, []int{p1.ID, p2.ID})
	assert.Equal(t, 1, res.Exitos())
	assert.Equal(t, 1, res.Duplicados())
	assert.Equal(t, 0, res.Fallos())

	items, err := client.Inventory(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// An assigned product cannot be deleted, only retired.
	err = client.DeleteProducto(ctx, p1.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "El producto está asignado en inventario")

	err = client.RetirarAsignacion(ctx, a.ID, "31-12-2026")
	require.Error(t, err)
	assert.EqualError(t, err, "fecha_retiro debe tener formato AAAA-MM-DD")

	require.NoError(t, client.RetirarAsignacion(ctx, a.ID, "2026-08-15"))
	items, err = client.Inventory(ctx, e.ID)
	require.NoError(t, err)
	for _, it := range items {
		if it.ID == a.ID {
			assert.Equal(t, models.EstadoRetirado, it.Estado())
			assert.Equal(t, "2026-08-15", it.FechaRetiro)
		}
	}

	// Once retired the pair can be assigned again.
	_, err = client.CreateAsignacion(ctx, models.AsignacionInput{EmpleadoID: e.ID, ProductoID: p1.ID})
	assert.NoError(t, err)
}

func TestUploadMasivo(t *testing.T) {
	_, client, _ := newTestServer(t)
	ctx := context.Background()
	ids := seedCatalogs(t, client)
	e := seedEmpleado(t, client, ids, "Carlos Pérez")
	p := seedProducto(t, client, ids, "Lenovo", "SN-001")

	data, err := report.BuildUploadWorkbook([]models.AsignacionInput{
		{EmpleadoID: e.ID, ProductoID: p.ID, QuienEntrega: "Bodega"},
		{EmpleadoID: e.ID, ProductoID: 9999},
	})
	require.NoError(t, err)

	res, err := client.UploadMasivo(ctx, "asignaciones.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.FailedRows, 1)
	assert.Equal(t, 3, res.FailedRows[0].Row)
	assert.Equal(t, "El producto no existe o está retirado", res.FailedRows[0].Error)

	items, err := client.Inventory(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestReporteExcel(t *testing.T) {
	_, client, _ := newTestServer(t)
	ctx := context.Background()
	ids := seedCatalogs(t, client)
	e := seedEmpleado(t, client, ids, "Carlos Pérez")
	p := seedProducto(t, client, ids, "Lenovo", "SN-001")
	_, err := client.CreateAsignacion(ctx, models.AsignacionInput{EmpleadoID: e.ID, ProductoID: p.ID})
	require.NoError(t, err)

	data, err := client.ReporteExcel(ctx)
	require.NoError(t, err)

	sum, err := report.Summarize(data)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Rows)
	assert.NotEmpty(t, sum.Header)
}

func TestActas(t *testing.T) {
	_, client, _ := newTestServer(t)
	ctx := context.Background()
	ids := seedCatalogs(t, client)
	e := seedEmpleado(t, client, ids, "Carlos Pérez")
	p := seedProducto(t, client, ids, "Lenovo", "SN-001")
	a, err := client.CreateAsignacion(ctx, models.AsignacionInput{EmpleadoID: e.ID, ProductoID: p.ID})
	require.NoError(t, err)

	pdf, err := client.PDFAsignacion(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	// The retirement certificate only exists once the assignment is retired.
	_, err = client.PDFRetiro(ctx, a.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "La asignación sigue activa")

	require.NoError(t, client.RetirarAsignacion(ctx, a.ID, ""))
	pdf, err = client.PDFRetiro(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
