package sqlinline

const QInsertContribution = `--sql 3af5667f-d944-4893-aa70-9336d60073c1
insert into contributions(id, name, amount, created_at)
values (gen_random_uuid(), nullif($1::text, ''), $2::bigint, now())
returning id::text, created_at;
`
