package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/molinosatl/invdash/internal/api"
	"github.com/molinosatl/invdash/internal/models"
	"github.com/molinosatl/invdash/internal/report"
	"github.com/molinosatl/invdash/internal/session"
)

const helpText = `Comandos disponibles:
  login <usuario>                      iniciar sesión
  logout                               cerrar sesión
  whoami                               mostrar el usuario actual

  empleados [búsqueda]                 listar empleados
  empleado add                         crear un empleado
  empleado edit <id>                   editar un empleado
  empleado retirar <id>                retirar un empleado
  empleado activar <id>                reactivar un empleado
  empleado del <id>                    eliminar un empleado

  productos [búsqueda]                 listar productos
  producto add|edit|retirar|activar|del ...

  catalogos                            listar los catálogos disponibles
  catalogo <tipo>                      listar un catálogo
  catalogo <tipo> add <nombre>         agregar un elemento
  catalogo <tipo> rename <id> <nombre> renombrar un elemento
  catalogo <tipo> del <id>             eliminar un elemento

  inventario [empleado_id]             listar asignaciones
  asignar <empleado_id> <producto_id...>  asignar productos a un empleado
  retirar-asignacion <id> [AAAA-MM-DD] retirar una asignación
  activar-asignacion <id>              reactivar una asignación
  upload <archivo.xlsx|.csv>           carga masiva de asignaciones
  plantilla <archivo.xlsx>             generar la plantilla de carga masiva

  reporte <archivo.xlsx>               descargar el reporte de inventario
  pdf asignacion <id> <archivo.pdf>    descargar el acta de asignación
  pdf retiro <id> <archivo.pdf>        descargar el acta de retiro

  usuarios                             listar usuarios (administradores)
  usuario add                          crear un usuario (administradores)
  usuario edit <id>                    editar un usuario (administradores)

  help, exit`

type shell struct {
	api  *api.Client
	sess session.Store
	in   *bufio.Scanner
	out  io.Writer
}

func newShell(client *api.Client, sess session.Store, in io.Reader, out io.Writer) *shell {
	return &shell{api: client, sess: sess, in: bufio.NewScanner(in), out: out}
}

// run executes the interactive loop until exit or EOF.
func (s *shell) run() {
	if u := s.sess.User(); u != nil {
		fmt.Fprintf(s.out, "Sesión activa como %s\n", displayName(u))
	}
	for {
		fmt.Fprint(s.out, "invdash> ")
		if !s.in.Scan() {
			break
		}
		args := strings.Fields(strings.TrimSpace(s.in.Text()))
		if len(args) == 0 {
			continue
		}
		ctx := context.Background()
		switch args[0] {
		case "help":
			fmt.Fprintln(s.out, helpText)
		case "login":
			s.login(ctx, args[1:])
		case "logout":
			s.logout()
		case "whoami":
			s.whoami(ctx)
		case "empleados":
			s.listEmpleados(ctx, strings.Join(args[1:], " "))
		case "empleado":
			s.empleado(ctx, args[1:])
		case "productos":
			s.listProductos(ctx, strings.Join(args[1:], " "))
		case "producto":
			s.producto(ctx, args[1:])
		case "catalogos":
			for _, t := range models.Catalogs {
				fmt.Fprintln(s.out, t)
			}
		case "catalogo":
			s.catalogo(ctx, args[1:])
		case "inventario":
			s.inventario(ctx, args[1:])
		case "asignar":
			s.asignar(ctx, args[1:])
		case "retirar-asignacion":
			s.retirarAsignacion(ctx, args[1:])
		case "activar-asignacion":
			if id, ok := s.idArg(args[1:], "activar-asignacion <id>"); ok {
				s.report(s.api.ActivarAsignacion(ctx, id), "Asignación reactivada")
			}
		case "upload":
			s.upload(ctx, args[1:])
		case "plantilla":
			s.plantilla(args[1:])
		case "reporte":
			s.reporte(ctx, args[1:])
		case "pdf":
			s.pdf(ctx, args[1:])
		case "usuarios":
			s.listUsers(ctx)
		case "usuario":
			s.usuario(ctx, args[1:])
		case "exit", "quit":
			fmt.Fprintln(s.out, "Hasta luego")
			return
		default:
			fmt.Fprintln(s.out, "Comando desconocido. Escriba 'help' para ver la lista.")
		}
	}
}

func (s *shell) login(ctx context.Context, args []string) {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		username = s.prompt("Usuario: ")
	}
	if username == "" {
		fmt.Fprintln(s.out, "Uso: login <usuario>")
		return
	}
	password := s.prompt("Contraseña: ")

	u, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Bienvenido, %s\n", displayName(u))
}

func (s *shell) logout() {
	if !s.sess.IsAuthenticated() {
		fmt.Fprintln(s.out, "No hay sesión activa")
		return
	}
	if err := s.sess.Clear(); err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintln(s.out, "Sesión cerrada")
}

func (s *shell) whoami(ctx context.Context) {
	if !s.sess.IsAuthenticated() {
		fmt.Fprintln(s.out, "No hay sesión activa")
		return
	}
	// Refresh from the backend so a revoked token is detected here
	// instead of on the next real command.
	u, err := s.api.Me(ctx)
	if err != nil {
		s.fail(err)
		return
	}
	role := "usuario"
	if u.IsAdmin {
		role = "administrador"
	}
	fmt.Fprintf(s.out, "%s (%s)\n", displayName(u), role)
}

func (s *shell) empleado(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Uso: empleado add|edit|retirar|activar|del ...")
		return
	}
	switch args[0] {
	case "add":
		in, ok := s.promptEmpleado(nil)
		if !ok {
			return
		}
		e, err := s.api.CreateEmpleado(ctx, in)
		if err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintf(s.out, "Empleado creado con id %d\n", e.ID)
	case "edit":
		id, ok := s.idArg(args[1:], "empleado edit <id>")
		if !ok {
			return
		}
		cur, err := s.api.Empleado(ctx, id)
		if err != nil {
			s.fail(err)
			return
		}
		in, ok := s.promptEmpleado(cur)
		if !ok {
			return
		}
		if _, err := s.api.UpdateEmpleado(ctx, id, in); err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintln(s.out, "Empleado actualizado")
	case "retirar":
		if id, ok := s.idArg(args[1:], "empleado retirar <id>"); ok {
			s.report(s.api.RetirarEmpleado(ctx, id), "Empleado retirado")
		}
	case "activar":
		if id, ok := s.idArg(args[1:], "empleado activar <id>"); ok {
			s.report(s.api.ActivarEmpleado(ctx, id), "Empleado reactivado")
		}
	case "del":
		if id, ok := s.idArg(args[1:], "empleado del <id>"); ok {
			s.report(s.api.DeleteEmpleado(ctx, id), "Empleado eliminado")
		}
	default:
		fmt.Fprintln(s.out, "Uso: empleado add|edit|retirar|activar|del ...")
	}
}

func (s *shell) producto(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Uso: producto add|edit|retirar|activar|del ...")
		return
	}
	switch args[0] {
	case "add":
		in, ok := s.promptProducto(nil)
		if !ok {
			return
		}
		p, err := s.api.CreateProducto(ctx, in)
		if err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintf(s.out, "Producto creado con id %d\n", p.ID)
	case "edit":
		id, ok := s.idArg(args[1:], "producto edit <id>")
		if !ok {
			return
		}
		cur, err := s.api.Producto(ctx, id)
		if err != nil {
			s.fail(err)
			return
		}
		in, ok := s.promptProducto(cur)
		if !ok {
			return
		}
		if _, err := s.api.UpdateProducto(ctx, id, in); err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintln(s.out, "Producto actualizado")
	case "retirar":
		if id, ok := s.idArg(args[1:], "producto retirar <id>"); ok {
			s.report(s.api.RetirarProducto(ctx, id), "Producto retirado")
		}
	case "activar":
		if id, ok := s.idArg(args[1:], "producto activar <id>"); ok {
			s.report(s.api.ActivarProducto(ctx, id), "Producto reactivado")
		}
	case "del":
		if id, ok := s.idArg(args[1:], "producto del <id>"); ok {
			s.report(s.api.DeleteProducto(ctx, id), "Producto eliminado")
		}
	default:
		fmt.Fprintln(s.out, "Uso: producto add|edit|retirar|activar|del ...")
	}
}

func (s *shell) catalogo(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Uso: catalogo <tipo> [add|rename|del ...]")
		return
	}
	tipo := models.CatalogTipo(args[0])
	if !tipo.Valid() {
		fmt.Fprintf(s.out, "Catálogo desconocido %q. Use 'catalogos' para ver la lista.\n", args[0])
		return
	}
	rest := args[1:]
	if len(rest) == 0 {
		items, err := s.api.Catalog(ctx, tipo)
		if err != nil {
			s.fail(err)
			return
		}
		s.printCatalog(items)
		return
	}
	switch rest[0] {
	case "add":
		if len(rest) < 2 {
			fmt.Fprintln(s.out, "Uso: catalogo <tipo> add <nombre>")
			return
		}
		nombre := strings.Join(rest[1:], " ")
		item, err := s.api.CreateCatalogItem(ctx, tipo, models.CatalogInput{Nombre: nombre})
		if err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintf(s.out, "Elemento creado con id %d\n", item.ID)
	case "rename":
		if len(rest) < 3 {
			fmt.Fprintln(s.out, "Uso: catalogo <tipo> rename <id> <nombre>")
			return
		}
		id, err := strconv.Atoi(rest[1])
		if err != nil {
			fmt.Fprintln(s.out, "El id debe ser un número")
			return
		}
		nombre := strings.Join(rest[2:], " ")
		if _, err := s.api.UpdateCatalogItem(ctx, tipo, id, models.CatalogInput{Nombre: nombre}); err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintln(s.out, "Elemento actualizado")
	case "del":
		if id, ok := s.idArg(rest[1:], "catalogo <tipo> del <id>"); ok {
			s.report(s.api.DeleteCatalogItem(ctx, tipo, id), "Elemento eliminado")
		}
	default:
		fmt.Fprintln(s.out, "Uso: catalogo <tipo> [add|rename|del ...]")
	}
}

func (s *shell) inventario(ctx context.Context, args []string) {
	empleadoID := 0
	if len(args) > 0 {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintln(s.out, "Uso: inventario [empleado_id]")
			return
		}
		empleadoID = id
	}
	items, err := s.api.Inventory(ctx, empleadoID)
	if err != nil {
		s.fail(err)
		return
	}
	s.printInventario(items)
}

func (s *shell) asignar(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Uso: asignar <empleado_id> <producto_id...>")
		return
	}
	empleadoID, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(s.out, "El id de empleado debe ser un número")
		return
	}
	productoIDs := make([]int, 0, len(args)-1)
	for _, a := range args[1:] {
		id, err := strconv.Atoi(a)
		if err != nil {
			fmt.Fprintf(s.out, "El id de producto %q no es un número\n", a)
			return
		}
		productoIDs = append(productoIDs, id)
	}

	base := models.AsignacionInput{
		EmpleadoID:   empleadoID,
		QuienEntrega: s.prompt("Quién entrega (opcional): "),
		Observacion:  s.prompt("Observación (opcional): "),
	}
	if sede := s.prompt("Sede id (opcional): "); sede != "" {
		id, err := strconv.Atoi(sede)
		if err != nil {
			fmt.Fprintln(s.out, "La sede debe ser un número")
			return
		}
		base.SedeID = &id
	}

	res := s.api.AssignProductos(ctx, base, productoIDs)
	for _, o := range res.Outcomes {
		switch {
		case o.Err == nil:
			fmt.Fprintf(s.out, "  producto %d: asignado (asignación %d)\n", o.ProductoID, o.Asignacion.ID)
		case api.IsDuplicate(o.Err):
			fmt.Fprintf(s.out, "  producto %d: ya estaba asignado\n", o.ProductoID)
		default:
			fmt.Fprintf(s.out, "  producto %d: %v\n", o.ProductoID, o.Err)
		}
	}
	fmt.Fprintf(s.out, "%d asignados, %d duplicados, %d con error\n",
		res.Exitos(), res.Duplicados(), res.Fallos())
}

func (s *shell) retirarAsignacion(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Uso: retirar-asignacion <id> [AAAA-MM-DD]")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(s.out, "El id debe ser un número")
		return
	}
	fecha := ""
	if len(args) > 1 {
		fecha = args[1]
	}
	s.report(s.api.RetirarAsignacion(ctx, id, fecha), "Asignación retirada")
}

func (s *shell) upload(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Uso: upload <archivo.xlsx|.csv>")
		return
	}
	path := args[0]

	var (
		data []byte
		name = filepath.Base(path)
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		// CSV convenience: convert locally to the workbook the backend
		// expects, validating rows before anything is sent.
		f, err := os.Open(path)
		if err != nil {
			s.fail(err)
			return
		}
		rows, err := report.ReadUploadCSV(f)
		f.Close()
		if err != nil {
			s.fail(err)
			return
		}
		data, err = report.BuildUploadWorkbook(rows)
		if err != nil {
			s.fail(err)
			return
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			s.fail(err)
			return
		}
	}

	res, err := s.api.UploadMasivo(ctx, name, bytes.NewReader(data))
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "%d asignaciones creadas\n", res.Created)
	for _, fr := range res.FailedRows {
		fmt.Fprintf(s.out, "  fila %d: %s\n", fr.Row, fr.Error)
	}
}

func (s *shell) plantilla(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Uso: plantilla <archivo.xlsx>")
		return
	}
	data, err := report.BuildUploadWorkbook(nil)
	if err != nil {
		s.fail(err)
		return
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Plantilla guardada en %s\n", args[0])
}

func (s *shell) reporte(ctx context.Context, args []string) {
	// "reporte excel <archivo>" also works, matching the endpoint name.
	if len(args) > 0 && args[0] == "excel" {
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Uso: reporte <archivo.xlsx>")
		return
	}
	data, err := s.api.ReporteExcel(ctx)
	if err != nil {
		s.fail(err)
		return
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		s.fail(err)
		return
	}
	sum, err := report.Summarize(data)
	if err != nil {
		fmt.Fprintf(s.out, "Reporte guardado en %s\n", args[0])
		return
	}
	fmt.Fprintf(s.out, "Reporte guardado en %s (%d filas en %q)\n", args[0], sum.Rows, sum.Sheet)
}

func (s *shell) pdf(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.out, "Uso: pdf asignacion|retiro <id> <archivo.pdf>")
		return
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(s.out, "El id debe ser un número")
		return
	}
	var data []byte
	switch args[0] {
	case "asignacion":
		data, err = s.api.PDFAsignacion(ctx, id)
	case "retiro":
		data, err = s.api.PDFRetiro(ctx, id)
	default:
		fmt.Fprintln(s.out, "Uso: pdf asignacion|retiro <id> <archivo.pdf>")
		return
	}
	if err != nil {
		s.fail(err)
		return
	}
	if err := os.WriteFile(args[2], data, 0o644); err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Acta guardada en %s\n", args[2])
}

func (s *shell) usuario(ctx context.Context, args []string) {
	if !s.requireAdmin() {
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Uso: usuario add|edit <id>")
		return
	}
	switch args[0] {
	case "add":
		in, ok := s.promptUser(nil)
		if !ok {
			return
		}
		u, err := s.api.CreateUser(ctx, in)
		if err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintf(s.out, "Usuario creado con id %d\n", u.ID)
	case "edit":
		id, ok := s.idArg(args[1:], "usuario edit <id>")
		if !ok {
			return
		}
		users, err := s.api.Users(ctx)
		if err != nil {
			s.fail(err)
			return
		}
		var cur *models.UserProfile
		for i := range users {
			if users[i].ID == id {
				cur = &users[i]
				break
			}
		}
		if cur == nil {
			fmt.Fprintln(s.out, "Usuario no encontrado")
			return
		}
		in, ok := s.promptUser(cur)
		if !ok {
			return
		}
		if _, err := s.api.UpdateUser(ctx, id, in); err != nil {
			s.fail(err)
			return
		}
		fmt.Fprintln(s.out, "Usuario actualizado")
	default:
		fmt.Fprintln(s.out, "Uso: usuario add|edit <id>")
	}
}

func (s *shell) requireAdmin() bool {
	if s.sess.IsAdmin() {
		return true
	}
	fmt.Fprintln(s.out, "Operación no permitida: requiere una cuenta de administrador")
	return false
}

func (s *shell) idArg(args []string, usage string) (int, bool) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Uso:", usage)
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(s.out, "El id debe ser un número")
		return 0, false
	}
	return id, true
}

// report prints msg on success and the error otherwise.
func (s *shell) report(err error, msg string) {
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintln(s.out, msg)
}

func (s *shell) fail(err error) {
	fmt.Fprintln(s.out, err)
}

func displayName(u *models.UserProfile) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
