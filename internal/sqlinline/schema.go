package sqlinline

import "github.com/lib/pq"

// ChangeChannel is the LISTEN/NOTIFY channel the triggers below publish on.
const ChangeChannel = "salawat_changes"

const QSchema = `--sql b316166d-2369-4169-a6fd-fc3adbc1e6d8
create table if not exists salawat_campaign (
  id uuid primary key default gen_random_uuid(),
  singleton boolean not null default true unique check (singleton),
  total_count bigint not null default 0 check (total_count >= 0),
  contribution_count bigint not null default 0 check (contribution_count >= 0),
  updated_at timestamptz not null default now()
);

create table if not exists contributions (
  id uuid primary key default gen_random_uuid(),
  name text,
  amount bigint not null check (amount >= 1),
  created_at timestamptz not null default now()
);

create index if not exists idx_contributions_created_at on contributions(created_at desc);

create or replace function salawat_notify_change() returns trigger
language plpgsql as $$
declare
  payload json;
begin
  if tg_table_name = 'salawat_campaign' then
    payload := json_build_object(
      'table', tg_table_name,
      'op', lower(tg_op),
      'totalCount', new.total_count,
      'contributionCount', new.contribution_count
    );
  else
    payload := json_build_object('table', tg_table_name, 'op', lower(tg_op));
  end if;
  perform pg_notify('salawat_changes', payload::text);
  return null;
end;
$$;

create or replace trigger salawat_campaign_notify
  after insert or update on salawat_campaign
  for each row execute function salawat_notify_change();

create or replace trigger contributions_notify
  after insert on contributions
  for each row execute function salawat_notify_change();
`

// QListenChanges subscribes a session to ChangeChannel.
var QListenChanges = "--sql 9d1c7a2e-5b3f-4e8a-a6c1-2f7d8e9b0c13\nlisten " + pq.QuoteIdentifier(ChangeChannel)
