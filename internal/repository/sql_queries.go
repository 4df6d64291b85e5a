package repository

const accountColumns = `id, telegram_id, username, full_name, language, role, created_at`

const selectAccountSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE telegram_id = $1`

// The no-op update makes RETURNING yield the stored row on conflict.
const insertAccountSQL = `
INSERT INTO accounts (telegram_id, username, full_name, language, role)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (telegram_id) DO UPDATE SET telegram_id = EXCLUDED.telegram_id
RETURNING ` + accountColumns

const upsertSuperAdminSQL = `
INSERT INTO accounts (telegram_id, full_name, language, role)
VALUES ($1, $2, $3, 'SUPERADMIN')
ON CONFLICT (telegram_id) DO UPDATE SET role = 'SUPERADMIN'
RETURNING ` + accountColumns

// Only plain users are promoted; existing admins yield no row.
const promoteAdminSQL = `
INSERT INTO accounts (telegram_id, full_name, language, role)
VALUES ($1, $2, $3, 'ADMIN')
ON CONFLICT (telegram_id) DO UPDATE SET role = 'ADMIN' WHERE accounts.role = 'USER'
RETURNING ` + accountColumns

const listAdminsSQL = `
SELECT ` + accountColumns + ` FROM accounts
WHERE role IN ('ADMIN', 'SUPERADMIN')
ORDER BY created_at, id`

const listProductsSQL = `SELECT id, name, quantity FROM products ORDER BY name`

const selectProductSQL = `SELECT id, name, quantity FROM products WHERE id = $1`

const lockProductSQL = `SELECT id, name, quantity FROM products WHERE id = $1 FOR UPDATE`

const insertProductSQL = `INSERT INTO products (name, quantity) VALUES ($1, $2) RETURNING id, name, quantity`

const deleteProductSQL = `DELETE FROM products WHERE id = $1 RETURNING id, name, quantity`

const updateProductQuantitySQL = `UPDATE products SET quantity = $2 WHERE id = $1`

const decrementProductSQL = `UPDATE products SET quantity = quantity - $2 WHERE id = $1`

const listFacultiesSQL = `SELECT id, name FROM faculties ORDER BY name`

const selectFacultySQL = `SELECT id, name FROM faculties WHERE id = $1`

const insertFacultySQL = `INSERT INTO faculties (name) VALUES ($1) RETURNING id, name`

const deleteFacultySQL = `DELETE FROM faculties WHERE id = $1 RETURNING id, name`

const insertOrderSQL = `
INSERT INTO orders (account_id, product_id, faculty_id, comment, wanted, given, missing, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at`

const orderViewSQL = `
SELECT
    o.id, o.account_id, o.product_id, o.faculty_id, o.comment,
    o.wanted, o.given, o.missing, o.status, o.created_at,
    p.name, f.name,
    a.telegram_id, a.username, a.full_name, a.language
FROM
    orders o
JOIN
    products p ON p.id = o.product_id
JOIN
    faculties f ON f.id = o.faculty_id
JOIN
    accounts a ON a.id = o.account_id
`

const listRecentOrdersSQL = orderViewSQL + `
ORDER BY o.created_at DESC, o.id DESC
LIMIT $1`

const listWaitingOrdersSQL = orderViewSQL + `
WHERE
    o.product_id = $1
    AND o.missing > 0
    AND o.status IN ('PENDING', 'READY')
ORDER BY o.created_at, o.id`

const completeOrderSQL = `
UPDATE orders SET status = 'COMPLETED'
WHERE id = $1 AND status IN ('PENDING', 'READY')`

const orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`
