// seed_catalogos genera el script SQL para poblar el catálogo de municipios
// (código DANE) a partir del XML oficial Municipios.xml.
//
// Uso: go run ./cmd/seed_catalogos [ruta/Municipios.xml]
// Por defecto busca Municipios.xml en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_municipios.sql
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type parametros struct {
	Tabla struct {
		Valores []valor `xml:"valor"`
	} `xml:"tabla"`
}

type valor struct {
	Cod    string `xml:"cod,attr"`
	Nombre string `xml:"nombre,attr"`
	Otro   struct {
		Codigo string `xml:"codigo,attr"`
		Valor  string `xml:"valor,attr"`
	} `xml:"otro"`
}

type municipio struct {
	cod, nombre, deptCode, deptNombre string
}

func main() {
	xmlPath := "Municipios.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var p parametros
	dec := xml.NewDecoder(f)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&p); err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	var cities []municipio
	for _, v := range p.Tabla.Valores {
		if v.Cod == "" || v.Nombre == "" {
			continue
		}
		cities = append(cities, municipio{
			cod:        strings.TrimSpace(v.Cod),
			nombre:     strings.TrimSpace(v.Nombre),
			deptCode:   strings.TrimSpace(v.Otro.Codigo),
			deptNombre: strings.TrimSpace(v.Otro.Valor),
		})
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i].cod < cities[j].cod })

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_municipios.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Municipios Colombia (código DANE completo)\n")
	out.WriteString("-- Generado desde Municipios.xml (DIAN)\n\n")
	for _, city := range cities {
		fmt.Fprintf(out, "INSERT INTO municipalities (code, name, department_code, department_name)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', '%s')\n",
			city.cod, escapeSQL(city.nombre), city.deptCode, escapeSQL(city.deptNombre))
		out.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name;\n")
	}

	fmt.Printf("Generado %s: %d municipios\n", outPath, len(cities))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
