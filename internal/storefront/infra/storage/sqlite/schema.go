package sqlite

// schema is the DDL executed once on startup. Money columns hold decimal
// strings and timestamps hold RFC3339 TEXT, the usual SQLite idioms.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    email           TEXT    NOT NULL UNIQUE COLLATE NOCASE,
    full_name       TEXT    NOT NULL DEFAULT '',
    password_hash   TEXT    NOT NULL,
    role            TEXT    NOT NULL CHECK (role IN ('ADMIN', 'EMPLOYEE', 'CUSTOMER')),
    enabled         INTEGER NOT NULL DEFAULT 1,
    token_version   INTEGER NOT NULL DEFAULT 0,
    created_at      TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    name            TEXT    NOT NULL,
    description     TEXT    NOT NULL DEFAULT '',
    created_at      TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS product_variants (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id      INTEGER NOT NULL REFERENCES products(id),
    sku             TEXT    NOT NULL UNIQUE,
    size            TEXT    NOT NULL DEFAULT '',
    color           TEXT    NOT NULL DEFAULT '',
    price           TEXT    NOT NULL,
    -- Only ever changed by a conditional decrement or an increment.
    stock_quantity  INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
    lifecycle       TEXT    NOT NULL DEFAULT 'ACTIVE' CHECK (lifecycle IN ('ACTIVE', 'INACTIVE', 'DELETED')),
    created_at      TEXT    NOT NULL,
    UNIQUE (product_id, size, color)
);

CREATE TABLE IF NOT EXISTS carts (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id     INTEGER NOT NULL UNIQUE REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS cart_items (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    cart_id         INTEGER NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
    variant_id      INTEGER NOT NULL REFERENCES product_variants(id),
    quantity        INTEGER NOT NULL CHECK (quantity > 0),
    UNIQUE (cart_id, variant_id)
);

CREATE TABLE IF NOT EXISTS addresses (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id     INTEGER NOT NULL REFERENCES users(id),
    full_name       TEXT    NOT NULL DEFAULT '',
    phone           TEXT    NOT NULL DEFAULT '',
    line1           TEXT    NOT NULL,
    line2           TEXT    NOT NULL DEFAULT '',
    city            TEXT    NOT NULL,
    region          TEXT    NOT NULL DEFAULT '',
    postal_code     TEXT    NOT NULL DEFAULT '',
    created_at      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_addresses_customer ON addresses(customer_id);

CREATE TABLE IF NOT EXISTS coupons (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    code            TEXT    NOT NULL UNIQUE COLLATE NOCASE,
    type            TEXT    NOT NULL CHECK (type IN ('PERCENT', 'FIXED')),
    value           TEXT    NOT NULL,
    min_order_total TEXT,
    start_at        TEXT,
    end_at          TEXT,
    usage_limit     INTEGER,
    per_user_limit  INTEGER,
    lifecycle       TEXT    NOT NULL DEFAULT 'ACTIVE' CHECK (lifecycle IN ('ACTIVE', 'INACTIVE', 'DELETED')),
    created_at      TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS shipping_zones (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    city            TEXT    NOT NULL UNIQUE COLLATE NOCASE,
    fee             TEXT    NOT NULL,
    label           TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS orders (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    reference       TEXT    NOT NULL UNIQUE,
    customer_id     INTEGER NOT NULL REFERENCES users(id),
    address_id      INTEGER NOT NULL REFERENCES addresses(id),
    employee_id     INTEGER REFERENCES users(id),
    status          TEXT    NOT NULL,
    subtotal        TEXT    NOT NULL,
    discount_total  TEXT    NOT NULL,
    shipping_fee    TEXT    NOT NULL,
    total           TEXT    NOT NULL,
    coupon_code     TEXT    NOT NULL DEFAULT '',
    shipping_label  TEXT    NOT NULL DEFAULT '',
    stock_deducted  INTEGER NOT NULL DEFAULT 1,
    created_at      TEXT    NOT NULL,
    updated_at      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, id);
CREATE INDEX IF NOT EXISTS idx_orders_employee ON orders(employee_id, id);
CREATE INDEX IF NOT EXISTS idx_orders_status   ON orders(status, id);

-- Snapshot rows. No reference to product_variants on purpose.
CREATE TABLE IF NOT EXISTS order_items (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id        INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_name    TEXT    NOT NULL,
    sku             TEXT    NOT NULL,
    size            TEXT    NOT NULL DEFAULT '',
    color           TEXT    NOT NULL DEFAULT '',
    unit_price      TEXT    NOT NULL,
    quantity        INTEGER NOT NULL CHECK (quantity > 0),
    line_total      TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS coupon_usages (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    coupon_id       INTEGER NOT NULL REFERENCES coupons(id),
    customer_id     INTEGER NOT NULL REFERENCES users(id),
    order_id        INTEGER NOT NULL REFERENCES orders(id),
    used_at         TEXT    NOT NULL,
    UNIQUE (coupon_id, customer_id, order_id)
);

CREATE INDEX IF NOT EXISTS idx_coupon_usages_customer ON coupon_usages(coupon_id, customer_id);

CREATE TABLE IF NOT EXISTS checkout_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    attempt_id      TEXT    NOT NULL,
    customer_id     INTEGER NOT NULL,
    status          TEXT    NOT NULL,
    step            TEXT    NOT NULL DEFAULT '',
    error_kind      TEXT    NOT NULL DEFAULT '',
    message         TEXT    NOT NULL DEFAULT '',
    order_reference TEXT    NOT NULL DEFAULT '',
    payload         TEXT,
    trace_id        TEXT    NOT NULL DEFAULT '',
    span_id         TEXT    NOT NULL DEFAULT '',
    created_at      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_logs_attempt  ON checkout_logs(attempt_id, id);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_customer ON checkout_logs(customer_id, id);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_trace    ON checkout_logs(trace_id);
`
