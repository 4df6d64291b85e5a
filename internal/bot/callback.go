package bot

import (
	"strconv"
	"strings"
)

// Kind is the action an inline button asks for.
type Kind int

const (
	KindUnknown Kind = iota
	KindShopEnter
	KindProduct
	KindFaculty
	KindFacultyInfo
	KindBackToStart
	KindBackToProducts
	KindBackToAdmin
	KindAdminProducts
	KindAdminOrders
	KindAdminFaculties
	KindAddProduct
	KindAddFaculty
	KindUpdateStock
	KindDeleteProduct
	KindDeleteFaculty
	KindManageAdmins
	KindAddAdmin
	KindCompleteOrder
	KindExportOrders
)

// Callback is a parsed inline button payload. ID is set only for kinds that carry one.
type Callback struct {
	Kind Kind
	ID   int
}

var plainTags = map[Kind]string{
	KindShopEnter:      "shop_enter",
	KindBackToStart:    "back_to_start",
	KindBackToProducts: "back_to_products",
	KindBackToAdmin:    "back_to_admin",
	KindAdminProducts:  "admin_products",
	KindAdminOrders:    "admin_orders",
	KindAdminFaculties: "admin_faculties",
	KindAddProduct:     "admin_add_product",
	KindAddFaculty:     "admin_add_faculty",
	KindManageAdmins:   "admin_manage_admins",
	KindAddAdmin:       "admin_add_admin",
	KindExportOrders:   "admin_export_orders",
}

// idPrefixes is ordered so that no prefix shadows a longer one ("faculty_info_" before "faculty_").
var idPrefixes = []struct {
	kind   Kind
	prefix string
}{
	{KindUpdateStock, "admin_update_stock_"},
	{KindDeleteProduct, "admin_delete_product_"},
	{KindDeleteFaculty, "admin_delete_faculty_"},
	{KindCompleteOrder, "admin_complete_order_"},
	{KindFacultyInfo, "faculty_info_"},
	{KindProduct, "product_"},
	{KindFaculty, "faculty_"},
}

var plainKinds = func() map[string]Kind {
	kinds := make(map[string]Kind, len(plainTags))
	for kind, tag := range plainTags {
		kinds[tag] = kind
	}
	return kinds
}()

// ParseCallback turns raw button data into a Callback. Unknown or malformed data yields KindUnknown.
func ParseCallback(data string) Callback {
	data = strings.TrimSpace(data)

	if kind, ok := plainKinds[data]; ok {
		return Callback{Kind: kind}
	}

	for _, p := range idPrefixes {
		rest, found := strings.CutPrefix(data, p.prefix)
		if !found {
			continue
		}
		id, err := strconv.Atoi(rest)
		if err != nil || id <= 0 || rest[0] == '+' {
			return Callback{Kind: KindUnknown}
		}
		return Callback{Kind: p.kind, ID: id}
	}

	return Callback{Kind: KindUnknown}
}

// String encodes the callback back into button data.
func (c Callback) String() string {
	if tag, ok := plainTags[c.Kind]; ok {
		return tag
	}
	for _, p := range idPrefixes {
		if p.kind == c.Kind {
			return p.prefix + strconv.Itoa(c.ID)
		}
	}
	return ""
}

// AdminOnly reports whether the kind needs at least the ADMIN role.
func (k Kind) AdminOnly() bool {
	switch k {
	case KindBackToAdmin, KindAdminProducts, KindAdminOrders, KindAdminFaculties, KindAddProduct,
		KindAddFaculty, KindUpdateStock, KindDeleteProduct, KindDeleteFaculty, KindCompleteOrder,
		KindExportOrders, KindManageAdmins, KindAddAdmin:
		return true
	default:
		return false
	}
}

// SuperAdminOnly reports whether the kind manages the admin roster.
func (k Kind) SuperAdminOnly() bool {
	return k == KindManageAdmins || k == KindAddAdmin
}

// Name is the payload tag without any ID, used as a metrics label.
func (k Kind) Name() string {
	if tag, ok := plainTags[k]; ok {
		return tag
	}
	for _, p := range idPrefixes {
		if p.kind == k {
			return strings.TrimSuffix(p.prefix, "_")
		}
	}
	return "unknown"
}
