package postgres

// schema is idempotent; Migrate runs it as one batch.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              BIGSERIAL PRIMARY KEY,
    email           TEXT        NOT NULL,
    full_name       TEXT        NOT NULL DEFAULT '',
    password_hash   TEXT        NOT NULL,
    role            TEXT        NOT NULL CHECK (role IN ('ADMIN', 'EMPLOYEE', 'CUSTOMER')),
    enabled         BOOLEAN     NOT NULL DEFAULT TRUE,
    token_version   INTEGER     NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users (lower(email));

CREATE TABLE IF NOT EXISTS products (
    id              BIGSERIAL PRIMARY KEY,
    name            TEXT        NOT NULL,
    description     TEXT        NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS product_variants (
    id              BIGSERIAL PRIMARY KEY,
    product_id      BIGINT        NOT NULL REFERENCES products(id),
    sku             TEXT          NOT NULL UNIQUE,
    size            TEXT          NOT NULL DEFAULT '',
    color           TEXT          NOT NULL DEFAULT '',
    price           NUMERIC(12,2) NOT NULL,
    stock_quantity  INTEGER       NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
    lifecycle       TEXT          NOT NULL DEFAULT 'ACTIVE' CHECK (lifecycle IN ('ACTIVE', 'INACTIVE', 'DELETED')),
    created_at      TIMESTAMPTZ   NOT NULL DEFAULT now(),
    UNIQUE (product_id, size, color)
);

CREATE TABLE IF NOT EXISTS carts (
    id              BIGSERIAL PRIMARY KEY,
    customer_id     BIGINT NOT NULL UNIQUE REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS cart_items (
    id              BIGSERIAL PRIMARY KEY,
    cart_id         BIGINT  NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
    variant_id      BIGINT  NOT NULL REFERENCES product_variants(id),
    quantity        INTEGER NOT NULL CHECK (quantity > 0),
    UNIQUE (cart_id, variant_id)
);

CREATE TABLE IF NOT EXISTS addresses (
    id              BIGSERIAL PRIMARY KEY,
    customer_id     BIGINT      NOT NULL REFERENCES users(id),
    full_name       TEXT        NOT NULL DEFAULT '',
    phone           TEXT        NOT NULL DEFAULT '',
    line1           TEXT        NOT NULL,
    line2           TEXT        NOT NULL DEFAULT '',
    city            TEXT        NOT NULL,
    region          TEXT        NOT NULL DEFAULT '',
    postal_code     TEXT        NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_addresses_customer ON addresses (customer_id);

CREATE TABLE IF NOT EXISTS coupons (
    id              BIGSERIAL PRIMARY KEY,
    code            TEXT          NOT NULL,
    type            TEXT          NOT NULL CHECK (type IN ('PERCENT', 'FIXED')),
    value           NUMERIC(12,2) NOT NULL,
    min_order_total NUMERIC(12,2),
    start_at        TIMESTAMPTZ,
    end_at          TIMESTAMPTZ,
    usage_limit     INTEGER,
    per_user_limit  INTEGER,
    lifecycle       TEXT          NOT NULL DEFAULT 'ACTIVE' CHECK (lifecycle IN ('ACTIVE', 'INACTIVE', 'DELETED')),
    created_at      TIMESTAMPTZ   NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_coupons_code ON coupons (upper(code));

CREATE TABLE IF NOT EXISTS shipping_zones (
    id              BIGSERIAL PRIMARY KEY,
    city            TEXT          NOT NULL,
    fee             NUMERIC(12,2) NOT NULL,
    label           TEXT          NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_shipping_zones_city ON shipping_zones (lower(city));

CREATE TABLE IF NOT EXISTS orders (
    id              BIGSERIAL PRIMARY KEY,
    reference       TEXT          NOT NULL UNIQUE,
    customer_id     BIGINT        NOT NULL REFERENCES users(id),
    address_id      BIGINT        NOT NULL REFERENCES addresses(id),
    employee_id     BIGINT        REFERENCES users(id),
    status          TEXT          NOT NULL,
    subtotal        NUMERIC(12,2) NOT NULL,
    discount_total  NUMERIC(12,2) NOT NULL,
    shipping_fee    NUMERIC(12,2) NOT NULL,
    total           NUMERIC(12,2) NOT NULL,
    coupon_code     TEXT          NOT NULL DEFAULT '',
    shipping_label  TEXT          NOT NULL DEFAULT '',
    stock_deducted  BOOLEAN       NOT NULL DEFAULT TRUE,
    created_at      TIMESTAMPTZ   NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ   NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id, id);
CREATE INDEX IF NOT EXISTS idx_orders_employee ON orders (employee_id, id);
CREATE INDEX IF NOT EXISTS idx_orders_status   ON orders (status, id);

CREATE TABLE IF NOT EXISTS order_items (
    id              BIGSERIAL PRIMARY KEY,
    order_id        BIGINT        NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_name    TEXT          NOT NULL,
    sku             TEXT          NOT NULL,
    size            TEXT          NOT NULL DEFAULT '',
    color           TEXT          NOT NULL DEFAULT '',
    unit_price      NUMERIC(12,2) NOT NULL,
    quantity        INTEGER       NOT NULL CHECK (quantity > 0),
    line_total      NUMERIC(12,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS coupon_usages (
    id              BIGSERIAL PRIMARY KEY,
    coupon_id       BIGINT      NOT NULL REFERENCES coupons(id),
    customer_id     BIGINT      NOT NULL REFERENCES users(id),
    order_id        BIGINT      NOT NULL REFERENCES orders(id),
    used_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (coupon_id, customer_id, order_id)
);
CREATE INDEX IF NOT EXISTS idx_coupon_usages_customer ON coupon_usages (coupon_id, customer_id);

CREATE TABLE IF NOT EXISTS checkout_logs (
    id              BIGSERIAL PRIMARY KEY,
    attempt_id      TEXT        NOT NULL,
    customer_id     BIGINT      NOT NULL,
    status          TEXT        NOT NULL,
    step            TEXT        NOT NULL DEFAULT '',
    error_kind      TEXT        NOT NULL DEFAULT '',
    message         TEXT        NOT NULL DEFAULT '',
    order_reference TEXT        NOT NULL DEFAULT '',
    payload         JSONB,
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_attempt  ON checkout_logs (attempt_id, id);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_customer ON checkout_logs (customer_id, id);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_trace    ON checkout_logs (trace_id);
`
