package sqlinline

const QInsertTransaction = `--sql d9c4e842-1ed7-4653-85b2-b98f79a1b8cc
insert into transactions(ngo_id, user_id, transaction_type, amount_minor, blockchain_hash, proof_url, description,
                         razorpay_order_id, razorpay_payment_id, razorpay_signature, status, created_at)
values ($1::bigint, nullif($2::text, '')::uuid, $3::text, $4::bigint, $5::text, nullif($6::text, ''), nullif($7::text, ''),
        nullif($8::text, ''), nullif($9::text, ''), nullif($10::text, ''), $11::text, now())
returning id, created_at;
`

const QSelectTransactionByID = `--sql e0bce296-f93d-44d8-8f2e-63ed8c098a5d
select t.id, t.ngo_id, n.name, t.transaction_type, t.amount_minor, t.created_at, t.blockchain_hash,
       coalesce(t.proof_url, ''), coalesce(t.description, ''), t.user_id::text, coalesce(u.username, ''),
       coalesce(t.razorpay_order_id, ''), coalesce(t.razorpay_payment_id, ''), t.status
from transactions t
join ngos n on n.id = t.ngo_id
left join users u on u.id = t.user_id
where t.id = $1::bigint;
`

const QSelectTransactionByPaymentID = `--sql 1434e2eb-afc8-4f41-9af6-90504a4a74cc
select t.id, t.ngo_id, n.name, t.transaction_type, t.amount_minor, t.created_at, t.blockchain_hash,
       coalesce(t.proof_url, ''), coalesce(t.description, ''), t.user_id::text, coalesce(u.username, ''),
       coalesce(t.razorpay_order_id, ''), coalesce(t.razorpay_payment_id, ''), t.status
from transactions t
join ngos n on n.id = t.ngo_id
left join users u on u.id = t.user_id
where t.razorpay_payment_id = $1::text;
`

const QListTransactionsByNGO = `--sql 8fc4e570-5ddf-4854-8971-9cf33c2b58c0
select t.id, t.ngo_id, n.name, t.transaction_type, t.amount_minor, t.created_at, t.blockchain_hash,
       coalesce(t.proof_url, ''), coalesce(t.description, ''), t.user_id::text, coalesce(u.username, ''),
       coalesce(t.razorpay_order_id, ''), coalesce(t.razorpay_payment_id, ''), t.status
from transactions t
join ngos n on n.id = t.ngo_id
left join users u on u.id = t.user_id
where t.ngo_id = $1::bigint and t.transaction_type = $2::text
order by t.created_at desc, t.id desc;
`

// QSearchTransactions treats zero/empty arguments as "no filter". $2 matches
// either the user id or the username.
const QSearchTransactions = `--sql d6b10d5e-2795-4937-aca4-60cf3659f534
select t.id, t.ngo_id, n.name, t.transaction_type, t.amount_minor, t.created_at, t.blockchain_hash,
       coalesce(t.proof_url, ''), coalesce(t.description, ''), t.user_id::text, coalesce(u.username, ''),
       coalesce(t.razorpay_order_id, ''), coalesce(t.razorpay_payment_id, ''), t.status
from transactions t
join ngos n on n.id = t.ngo_id
left join users u on u.id = t.user_id
where ($1::bigint = 0 or t.ngo_id = $1::bigint)
  and ($2::text = '' or t.user_id::text = $2::text or u.username = $2::text)
  and ($3::text = '' or t.transaction_type = $3::text)
  and ($4::bigint = 0 or t.amount_minor >= $4::bigint)
  and ($5::bigint = 0 or t.amount_minor <= $5::bigint)
order by case when $6::boolean then t.created_at end asc,
         case when not $6::boolean then t.created_at end desc,
         t.id;
`

const QSelectLatestHash = `--sql 4c4646b1-03e5-4674-81e9-48408fae73dd
select blockchain_hash
from transactions
order by id desc
limit 1;
`
