package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/molinosatl/invdash/internal/models"
)

func (s *shell) prompt(label string) string {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return ""
	}
	return s.in.Text()
}

// promptDefault asks for a value showing the current one; an empty answer
// keeps it.
func (s *shell) promptDefault(label, cur string) string {
	v := s.prompt(fmt.Sprintf("%s [%s]: ", label, cur))
	if v == "" {
		return cur
	}
	return v
}

// promptID asks for a catalog id. Returns false on a non-numeric answer.
func (s *shell) promptID(label string, cur int) (int, bool) {
	v := s.promptDefault(label, strconv.Itoa(cur))
	id, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintln(s.out, "Debe ser un número")
		return 0, false
	}
	return id, true
}

func (s *shell) promptEmpleado(cur *models.Empleado) (models.EmpleadoInput, bool) {
	var base models.Empleado
	if cur != nil {
		base = *cur
	}
	in := models.EmpleadoInput{
		Nombre: s.promptDefault("Nombre", base.Nombre),
	}
	var ok bool
	if in.AreaID, ok = s.promptID("Área id", base.AreaID); !ok {
		return in, false
	}
	if in.CargoID, ok = s.promptID("Cargo id", base.CargoID); !ok {
		return in, false
	}
	if in.EmpresaID, ok = s.promptID("Empresa id", base.EmpresaID); !ok {
		return in, false
	}
	if in.CiudadID, ok = s.promptID("Ciudad id", base.CiudadID); !ok {
		return in, false
	}
	return in, true
}

func (s *shell) promptProducto(cur *models.Producto) (models.ProductoInput, bool) {
	var base models.Producto
	if cur != nil {
		base = *cur
	}
	in := models.ProductoInput{
		Marca:      s.promptDefault("Marca", base.Marca),
		Referencia: s.promptDefault("Referencia", base.Referencia),
		Serial:     s.promptDefault("Serial", base.Serial),
		Procesador: s.promptDefault("Procesador", base.Procesador),
		Ram:        s.promptDefault("RAM", base.Ram),
		DiscoDuro:  s.promptDefault("Disco duro", base.DiscoDuro),
	}
	var ok bool
	if in.TipoProductoID, ok = s.promptID("Tipo de producto id", base.TipoProductoID); !ok {
		return in, false
	}
	return in, true
}

func (s *shell) promptUser(cur *models.UserProfile) (models.UserInput, bool) {
	var base models.UserProfile
	if cur != nil {
		base = *cur
	}
	in := models.UserInput{
		Username: s.promptDefault("Usuario", base.Username),
		FullName: s.promptDefault("Nombre completo", base.FullName),
	}
	label := "Contraseña: "
	if cur != nil {
		label = "Contraseña (vacío mantiene la actual): "
	}
	in.Password = s.prompt(label)
	in.IsAdmin = s.promptDefault("Administrador (s/n)", boolResp(base.IsAdmin)) == "s"
	if cur != nil {
		active := s.promptDefault("Activo (s/n)", boolResp(base.IsActive)) == "s"
		in.IsActive = &active
	}
	return in, true
}

func boolResp(b bool) string {
	if b {
		return "s"
	}
	return "n"
}

func (s *shell) listEmpleados(ctx context.Context, search string) {
	items, err := s.api.Empleados(ctx, search)
	if err != nil {
		s.fail(err)
		return
	}
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tÁREA\tCARGO\tEMPRESA\tCIUDAD\tESTADO")
	for _, e := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Nombre, e.Area, e.Cargo, e.Empresa, e.Ciudad, e.Estado())
	}
	w.Flush()
	fmt.Fprintf(s.out, "%d empleados\n", len(items))
}

func (s *shell) listProductos(ctx context.Context, search string) {
	items, err := s.api.Productos(ctx, search)
	if err != nil {
		s.fail(err)
		return
	}
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMARCA\tREFERENCIA\tSERIAL\tTIPO\tESTADO")
	for _, p := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Marca, p.Referencia, p.Serial, p.TipoProducto, p.Estado())
	}
	w.Flush()
	fmt.Fprintf(s.out, "%d productos\n", len(items))
}

func (s *shell) printCatalog(items []models.CatalogItem) {
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\n", it.ID, it.Nombre)
	}
	w.Flush()
}

func (s *shell) printInventario(items []models.Asignacion) {
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMPLEADO\tPRODUCTO\tENTREGA\tRETIRO\tESTADO")
	for _, a := range items {
		empleado := strconv.Itoa(a.EmpleadoID)
		if a.Empleado != nil {
			empleado = a.Empleado.Nombre
		}
		producto := strconv.Itoa(a.ProductoID)
		if a.Producto != nil {
			producto = a.Producto.Marca
			if a.Producto.Serial != "" {
				producto += " " + a.Producto.Serial
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, empleado, producto, a.FechaEntrega, a.FechaRetiro, a.Estado())
	}
	w.Flush()
	fmt.Fprintf(s.out, "%d asignaciones\n", len(items))
}

func (s *shell) listUsers(ctx context.Context) {
	if !s.requireAdmin() {
		return
	}
	users, err := s.api.Users(ctx)
	if err != nil {
		s.fail(err)
		return
	}
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSUARIO\tNOMBRE\tROL\tACTIVO")
	for _, u := range users {
		role := "usuario"
		if u.IsAdmin {
			role = "administrador"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.FullName, role, boolResp(u.IsActive))
	}
	w.Flush()
}
