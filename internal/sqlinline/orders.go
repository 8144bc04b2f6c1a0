package sqlinline

const QInsertOrder = `--sql d7300b02-ce17-441b-907c-bf11e8c9e360
insert into payment_orders(order_id, ngo_id, user_id, amount_minor, currency, status, created_at, updated_at)
values ($1::text, $2::bigint, $3::uuid, $4::bigint, $5::text, $6::text, now(), now())
returning created_at;
`

const QSelectOrder = `--sql 47cdf873-9cae-4743-a10a-a52f7d2be297
select order_id, ngo_id, user_id::text, amount_minor, currency, status, created_at
from payment_orders
where order_id = $1::text;
`

const QUpdateOrderStatus = `--sql b02f61d7-c6c8-439e-bc27-84970636aaec
update payment_orders
set status = $2::text, updated_at = now()
where order_id = $1::text;
`
