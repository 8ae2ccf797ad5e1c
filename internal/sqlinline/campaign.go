package sqlinline

const QCampaignStats = `--sql 4561e5cc-7317-45d9-aaba-d96a4b296749
select total_count, contribution_count
from salawat_campaign
where singleton;
`

// QAdvanceCampaign creates the singleton row on first use and otherwise
// advances it in place; the row lock taken by the upsert serialises writers.
const QAdvanceCampaign = `--sql fec43562-e755-4fc7-9e44-ed3dfc3ccb80
insert into salawat_campaign(id, singleton, total_count, contribution_count, updated_at)
values (gen_random_uuid(), true, $1::bigint, 1, now())
on conflict (singleton) do update set
  total_count = salawat_campaign.total_count + excluded.total_count,
  contribution_count = salawat_campaign.contribution_count + 1,
  updated_at = now()
returning total_count, contribution_count;
`
