package sqlinline

const QInsertNGO = `--sql e27231c6-dd56-422f-a22f-f4df16c5ae06
insert into ngos(name, description, logo_url, certificate_url, admin_id, work_images, created_at, updated_at)
values ($1::text, $2::text, $3::text, $4::text, $5::uuid, coalesce($6::text[], '{}'::text[]), now(), now())
returning id;
`

const QListNGOs = `--sql d313a76d-63a0-42cf-88df-e8acaeee9815
select n.id, n.name, n.description, n.logo_url, n.certificate_url, n.admin_id::text, u.username, n.work_images
from ngos n
join users u on u.id = n.admin_id
order by n.id;
`

const QSelectNGOByID = `--sql b8294a34-759c-418c-a5ea-62c0b23b1c09
select n.id, n.name, n.description, n.logo_url, n.certificate_url, n.admin_id::text, u.username, n.work_images
from ngos n
join users u on u.id = n.admin_id
where n.id = $1::bigint;
`

const QSelectFirstNGOByAdmin = `--sql 80b183b4-e897-4667-b1d6-321e68105e1a
select n.id, n.name, n.description, n.logo_url, n.certificate_url, n.admin_id::text, u.username, n.work_images
from ngos n
join users u on u.id = n.admin_id
where n.admin_id = $1::uuid
order by n.id
limit 1;
`

const QUpdateNGO = `--sql 52fdc612-ce12-4a3e-83d7-e1b97de246f4
update ngos
set name = $2::text,
    description = $3::text,
    logo_url = $4::text,
    certificate_url = $5::text,
    work_images = coalesce($6::text[], '{}'::text[]),
    updated_at = now()
where id = $1::bigint;
`
