package response

import (
	"github.com/jinzhu/copier"
)

// mapInto copies fields by name from a read model into its response shape.
// Pointer fields are shared, not cloned; read models are not reused after mapping.
func mapInto(dst, src any) {
	if err := copier.Copy(dst, src); err != nil {
		panic("response mapping: " + err.Error())
	}
}
