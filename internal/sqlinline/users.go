package sqlinline

const QInsertUser = `--sql b4ab4b46-3d77-4e24-a4a3-3da1d24869c4
insert into users(username, password_hash, created_at)
values ($1::text, $2::text, now())
returning id::text, created_at;
`

const QSelectUserByUsername = `--sql 25967d13-9be6-4fe6-a591-b1c3d6cd50db
select id::text, username, password_hash, created_at
from users
where username = $1::text;
`

const QSelectUserByID = `--sql ff821dbe-235e-4f98-a1f4-17e3c9303dcf
select id::text, username, password_hash, created_at
from users
where id = $1::uuid;
`

// QUpsertAuthToken keeps the first key issued to a user.
const QUpsertAuthToken = `--sql 44c9f818-36c5-43ff-8fdf-fcd67848afc5
insert into auth_tokens(key, user_id, created_at)
values ($1::text, $2::uuid, now())
on conflict (user_id) do update set user_id = excluded.user_id
returning key;
`

const QSelectUserIDByToken = `--sql 043334ce-4456-4411-877b-798bcbbfc008
select user_id::text
from auth_tokens
where key = $1::text;
`
