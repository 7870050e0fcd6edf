package models

// Estado is the soft-delete state of an employee, product or assignment.
// The backend never deletes these records; they transition between activo
// and retirado via the /activar and /retirar endpoints.
type Estado string

const (
	// EstadoActivo marks a record in use.
	EstadoActivo Estado = "activo"
	// EstadoRetirado marks a record taken out of circulation.
	EstadoRetirado Estado = "retirado"
)

func estadoOf(isActive bool) Estado {
	if isActive {
		return EstadoActivo
	}
	return EstadoRetirado
}

// CatalogTipo names one of the reference catalogs.
type CatalogTipo string

const (
	CatalogAreas       CatalogTipo = "areas"
	CatalogEmpresas    CatalogTipo = "empresas"
	CatalogCargos      CatalogTipo = "cargos"
	CatalogEquipoTipos CatalogTipo = "equipo_tipos"
	CatalogCiudades    CatalogTipo = "ciudades"
)

// Catalogs lists every known catalog, in menu order.
var Catalogs = []CatalogTipo{
	CatalogAreas,
	CatalogEmpresas,
	CatalogCargos,
	CatalogEquipoTipos,
	CatalogCiudades,
}

// Valid reports whether t names a known catalog.
func (t CatalogTipo) Valid() bool {
	for _, c := range Catalogs {
		if t == c {
			return true
		}
	}
	return false
}
