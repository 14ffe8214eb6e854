package factus

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// XMLArtifactInfo resumen del XML UBL firmado descargado del proveedor.
type XMLArtifactInfo struct {
	RootName string // ej: "Invoice", "CreditNote"
	CUFE     string // contenido de cbc:UUID
	Number   string // contenido de cbc:ID
}

// InspectSignedXML valida que el XML descargado sea parseable y extrae el
// CUFE (cbc:UUID) y el número (cbc:ID) para contrastarlos con lo almacenado
// localmente. No verifica la firma: el XML ya viene firmado por el proveedor.
func InspectSignedXML(xmlBytes []byte) (*XMLArtifactInfo, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("factus: XML descargado no parseable: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("factus: XML descargado sin elemento raíz")
	}

	info := &XMLArtifactInfo{RootName: root.Tag}
	for _, child := range root.ChildElements() {
		// UBL usa el prefijo cbc para los básicos; etree expone el tag local.
		switch child.Tag {
		case "UUID":
			info.CUFE = strings.TrimSpace(child.Text())
		case "ID":
			if info.Number == "" {
				info.Number = strings.TrimSpace(child.Text())
			}
		}
	}
	if info.CUFE == "" {
		return info, fmt.Errorf("factus: el XML no contiene cbc:UUID (CUFE)")
	}
	return info, nil
}
