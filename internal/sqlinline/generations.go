package sqlinline

const QInsertGeneration = `--sql 5f0c9e4a-1b7d-4c2e-9a63-8d41f2b7e0c5
insert into generations (
    id,
    studio_id,
    model_id,
    theme_name,
    has_logo,
    provider,
    status,
    error_message,
    duration_ms,
    locale,
    country,
    created_at
)
values (
    $1::uuid,
    $2::text,
    $3::text,
    $4::text,
    $5::boolean,
    $6::text,
    $7::text,
    nullif($8::text, ''),
    $9::bigint,
    $10::text,
    nullif($11::text, ''),
    $12::timestamptz
);
`

const QGenerationTotalsSince = `--sql b2d87f13-6a4e-4f0b-8c15-3e9a7d2c64f1
select
    count(*)::bigint                                           as total,
    count(*) filter (where status = 'SUCCEEDED')::bigint       as succeeded,
    count(*) filter (where status = 'FAILED')::bigint          as failed
from generations
where created_at >= $1::timestamptz;
`

const QGenerationThemesSince = `--sql 9e4a6c20-3d1f-4b87-a5e2-71c0f8d3b946
select theme_name, count(*)::bigint
from generations
where created_at >= $1::timestamptz
group by theme_name
order by theme_name;
`
