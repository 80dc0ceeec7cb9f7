package shadergen

// library holds every helper any program may call. Generate appends it to
// each program and EliminateDeadCode strips the helpers the enabled
// features do not reach.
const library = `
fn luma(c: vec3<f32>) -> f32 {
    return dot(c, vec3<f32>(0.2126, 0.7152, 0.0722));
}

fn srgb_to_linear(s: f32) -> f32 {
    if (s <= 0.04045) {
        return s / 12.92;
    }
    return pow((s + 0.055) / 1.055, 2.4);
}

fn srgb_to_linear3(c: vec3<f32>) -> vec3<f32> {
    return vec3<f32>(srgb_to_linear(c.r), srgb_to_linear(c.g), srgb_to_linear(c.b));
}

fn linear_to_srgb(l: f32) -> f32 {
    if (l <= 0.0) {
        return 0.0;
    }
    if (l <= 0.0031308) {
        return l * 12.92;
    }
    return 1.055 * pow(l, 1.0 / 2.4) - 0.055;
}

fn linear_to_srgb3(c: vec3<f32>) -> vec3<f32> {
    return vec3<f32>(linear_to_srgb(c.r), linear_to_srgb(c.g), linear_to_srgb(c.b));
}

fn clamp01(c: vec3<f32>) -> vec3<f32> {
    return clamp(c, vec3<f32>(0.0), vec3<f32>(1.0));
}

fn fetch_source(x: i32, y: i32) -> vec4<f32> {
    let sw = i32(u.geo_size.z);
    let sh = i32(u.geo_size.w);
    let cx = clamp(x, 0, sw - 1);
    let cy = clamp(y, 0, sh - 1);
    return unpack4x8unorm(src[u32(cy * sw + cx)]);
}

fn sample_source(p: vec2<f32>) -> vec4<f32> {
    let q = p - vec2<f32>(0.5);
    let f = floor(q);
    let t = q - f;
    let i = vec2<i32>(f);
    let a = fetch_source(i.x, i.y);
    let b = fetch_source(i.x + 1, i.y);
    let c = fetch_source(i.x, i.y + 1);
    let d = fetch_source(i.x + 1, i.y + 1);
    return mix(mix(a, b, t.x), mix(c, d, t.x), t.y);
}

fn map_source(o: vec2<f32>, ab: f32) -> vec2<f32> {
    let n = o / u.geo_size.xy - vec2<f32>(0.5);
    var q = vec2<f32>(dot(u.geo_a.xy, n) + u.geo_a.z, dot(u.geo_b.xy, n) + u.geo_b.z);
    let w = max(1.0 + u.geo_p.x * q.x + u.geo_p.y * q.y, 1e-3);
    q = q / w;
    let r2 = dot(q, q) * 0.5;
    q = q * ((1.0 + u.geo_b.w * r2) * (1.0 + ab));
    let quarter = u32(u.geo_a.w);
    let sw = u.geo_size.z;
    let sh = u.geo_size.w;
    var ow = sw;
    var oh = sh;
    if (quarter == 1u || quarter == 3u) {
        ow = sh;
        oh = sw;
    }
    let px = (q.x + 1.0) * 0.5 * ow;
    let py = (q.y + 1.0) * 0.5 * oh;
    if (quarter == 1u) {
        return vec2<f32>(py, sh - px);
    }
    if (quarter == 2u) {
        return vec2<f32>(sw - px, sh - py);
    }
    if (quarter == 3u) {
        return vec2<f32>(sw - py, px);
    }
    return vec2<f32>(px, py);
}

fn geometry_pixel(o: vec2<f32>) -> vec4<f32> {
    let r = sample_source(map_source(o, u.geo_p.z));
    let g = sample_source(map_source(o, 0.0));
    let b = sample_source(map_source(o, u.geo_p.w));
    return vec4<f32>(r.r, g.g, b.b, g.a);
}

fn shadow_mask(y: f32) -> f32 {
    let v = 1.0 - smoothstep(0.0, 0.5, y);
    return v * v;
}

fn highlight_mask(y: f32) -> f32 {
    let v = smoothstep(0.5, 1.0, y);
    return v * v;
}

fn zone_delta(y: f32, s: f32, h: f32) -> f32 {
    return 0.25 * (s * shadow_mask(y) + h * highlight_mask(y));
}

fn apply_contrast(c: vec3<f32>, k: f32) -> vec3<f32> {
    return (c - vec3<f32>(0.5)) * k + vec3<f32>(0.5);
}

fn apply_tone(c0: vec3<f32>) -> vec3<f32> {
    let bp = u.tone.x;
    let wp = u.tone.y;
    var c = (c0 - vec3<f32>(bp)) / (wp - bp);
    c = c + vec3<f32>(zone_delta(luma(c), u.tone.z, u.tone.w));
    return apply_contrast(c, 1.0 + u.tone_contrast.x * 0.8);
}

fn curve_lookup(row: u32, v: f32) -> f32 {
    let x = clamp(v, 0.0, 1.0) * 255.0;
    let i = min(u32(x), 254u);
    let f = x - f32(i);
    let a = curves[row * 256u + i];
    let b = curves[row * 256u + i + 1u];
    return a + (b - a) * f;
}

fn apply_curves(c: vec3<f32>) -> vec3<f32> {
    return vec3<f32>(
        curve_lookup(1u, curve_lookup(0u, c.r)),
        curve_lookup(2u, curve_lookup(0u, c.g)),
        curve_lookup(3u, curve_lookup(0u, c.b))
    );
}

fn rgb_to_hsl(c0: vec3<f32>) -> vec3<f32> {
    let c = clamp01(c0);
    let hi = max(max(c.r, c.g), c.b);
    let lo = min(min(c.r, c.g), c.b);
    let l = (hi + lo) * 0.5;
    let d = hi - lo;
    if (d < 1e-6) {
        return vec3<f32>(0.0, 0.0, l);
    }
    var s: f32;
    if (l > 0.5) {
        s = d / (2.0 - hi - lo);
    } else {
        s = d / (hi + lo);
    }
    var h: f32;
    if (hi == c.r) {
        h = (c.g - c.b) / d;
        if (c.g < c.b) {
            h = h + 6.0;
        }
    } else if (hi == c.g) {
        h = (c.b - c.r) / d + 2.0;
    } else {
        h = (c.r - c.g) / d + 4.0;
    }
    return vec3<f32>(h / 6.0, s, l);
}

fn hue_channel(p: f32, q: f32, t0: f32) -> f32 {
    let t = fract(t0);
    if (t < 1.0 / 6.0) {
        return p + (q - p) * 6.0 * t;
    }
    if (t < 0.5) {
        return q;
    }
    if (t < 2.0 / 3.0) {
        return p + (q - p) * (2.0 / 3.0 - t) * 6.0;
    }
    return p;
}

fn hsl_to_rgb(hsl: vec3<f32>) -> vec3<f32> {
    if (hsl.y <= 0.0) {
        return vec3<f32>(hsl.z);
    }
    var q: f32;
    if (hsl.z < 0.5) {
        q = hsl.z * (1.0 + hsl.y);
    } else {
        q = hsl.z + hsl.y - hsl.z * hsl.y;
    }
    let p = 2.0 * hsl.z - q;
    return vec3<f32>(
        hue_channel(p, q, hsl.x + 1.0 / 3.0),
        hue_channel(p, q, hsl.x),
        hue_channel(p, q, hsl.x - 1.0 / 3.0)
    );
}

fn hue_distance(a: f32, b: f32) -> f32 {
    let d = fract(a - b);
    return min(d, 1.0 - d);
}

fn apply_hsl(c: vec3<f32>) -> vec3<f32> {
    var hsl = rgb_to_hsl(c);
    let gate = smoothstep(0.0, 0.1, hsl.y);
    var sum = 0.0;
    var d = vec3<f32>(0.0);
    for (var i = 0u; i < 8u; i = i + 1u) {
        let band = u.hsl[i];
        let w = max(0.0, 1.0 - hue_distance(hsl.x, band.w) / 0.125);
        sum = sum + w;
        d = d + w * band.xyz;
    }
    let norm = gate / max(sum, 1.0);
    hsl.x = fract(hsl.x + d.x * norm * (30.0 / 360.0));
    hsl.y = clamp(hsl.y * (1.0 + d.y * norm), 0.0, 1.0);
    hsl.z = clamp(hsl.z + d.z * norm * 0.2 * hsl.y, 0.0, 1.0);
    return hsl_to_rgb(hsl);
}

fn apply_color(c0: vec3<f32>) -> vec3<f32> {
    let sat = max(max(c0.r, c0.g), c0.b) - min(min(c0.r, c0.g), c0.b);
    let c = mix(vec3<f32>(luma(c0)), c0, 1.0 + u.color.x * (1.0 - sat));
    return mix(vec3<f32>(luma(c)), c, 1.0 + u.color.y);
}

fn wb_gains(t: f32, n: f32) -> vec3<f32> {
    let g = vec3<f32>(1.0 + 0.22 * t + 0.04 * n, 1.0 - 0.18 * n, 1.0 - 0.22 * t + 0.04 * n);
    return g / luma(g);
}

fn local_shape(base: u32, uv: vec2<f32>) -> f32 {
    let v0 = locals[base];
    let v1 = locals[base + 1u];
    let v2 = locals[base + 2u];
    let v3 = locals[base + 3u];
    let f = max(v0.z, 0.001);
    var m = 0.0;
    let kind = u32(v0.x);
    if (kind == 0u) {
        let d0 = uv - v1.xy;
        let r = vec2<f32>(d0.x * v2.x + d0.y * v2.y, -d0.x * v2.y + d0.y * v2.x) / v1.zw;
        m = 1.0 - smoothstep(1.0 - f, 1.0, length(r));
    } else if (kind == 1u) {
        let a = v3.zw - v3.xy;
        let den = dot(a, a);
        var t = 0.0;
        if (den > 1e-8) {
            t = dot(uv - v3.xy, a) / den;
        }
        m = 1.0 - smoothstep(0.5 - f * 0.5, 0.5 + f * 0.5, t);
    } else {
        let count = u32(v2.w);
        let offset = u32(locals[base + 5u].z);
        for (var k = 0u; k < count; k = k + 1u) {
            let pt = locals[offset + k];
            let d = vec2<f32>((uv.x - pt.x) * v2.z, uv.y - pt.y);
            m = max(m, pt.w * (1.0 - smoothstep(pt.z * (1.0 - f), pt.z, length(d))));
        }
    }
    if (v0.w > 0.5) {
        m = 1.0 - m;
    }
    return m;
}

fn local_gate(base: u32, c: vec3<f32>) -> f32 {
    let v4 = locals[base + 4u];
    let v5 = locals[base + 5u];
    let y = luma(c);
    var g = smoothstep(v4.x - 0.05, v4.x, y) * (1.0 - smoothstep(v4.y, v4.y + 0.05, y));
    let hsl = rgb_to_hsl(c);
    if (v4.w > 0.0) {
        g = g * (1.0 - smoothstep(v4.w, v4.w + 0.05, hue_distance(hsl.x, v4.z)));
    }
    g = g * smoothstep(v5.x - 0.05, v5.x, hsl.y) * (1.0 - smoothstep(v5.y, v5.y + 0.05, hsl.y));
    return g;
}

fn apply_local(base: u32, c0: vec3<f32>, m: f32) -> vec3<f32> {
    if (m <= 0.0) {
        return c0;
    }
    let v6 = locals[base + 6u];
    let v7 = locals[base + 7u];
    var c = c0 * exp2(v6.x * m / 2.2);
    c = apply_contrast(c, 1.0 + v6.y * m * 0.8);
    c = c + vec3<f32>(zone_delta(luma(c), v6.w * m, v6.z * m));
    c = c * wb_gains(v7.x * m, v7.y * m);
    return mix(vec3<f32>(luma(c)), c, 1.0 + v7.z * m);
}

fn apply_locals(c0: vec3<f32>, uv: vec2<f32>) -> vec3<f32> {
    var c = c0;
    let n = u32(u.locals_info.x);
    for (var i = 0u; i < n; i = i + 1u) {
        let base = i * 8u;
        let m = local_shape(base, uv) * local_gate(base, c) * locals[base].y;
        c = apply_local(base, c, m);
    }
    return c;
}

fn apply_grading(c: vec3<f32>) -> vec3<f32> {
    let y = luma(c);
    let p = u.grade_pivot.x;
    let wd = u.grade_pivot.y;
    let ws = 1.0 - smoothstep(p - wd, p, y);
    let wh = smoothstep(p, p + wd, y);
    let wm = max(0.0, 1.0 - ws - wh);
    let tint = u.grade_shadows.xyz * ws + u.grade_midtones.xyz * wm + u.grade_highlights.xyz * wh;
    let lum = u.grade_shadows.w * ws + u.grade_midtones.w * wm + u.grade_highlights.w * wh;
    return c + tint * 0.3 + vec3<f32>(lum * 0.2);
}

fn tone_response(v0: f32) -> f32 {
    let v = pow(max(v0, 0.0), u.film_tone.x);
    let s = sin(3.14159265 * v);
    let r = v - u.film_tone.y * 0.15 * s * (1.0 - v);
    return r + u.film_tone.z * 0.15 * s * r;
}

fn apply_tone_response(c: vec3<f32>) -> vec3<f32> {
    return vec3<f32>(tone_response(c.r), tone_response(c.g), tone_response(c.b));
}

fn apply_matrix(c: vec3<f32>) -> vec3<f32> {
    return vec3<f32>(dot(u.matrix_r.xyz, c), dot(u.matrix_g.xyz, c), dot(u.matrix_b.xyz, c));
}

fn lut_at(n: u32, x: u32, y: u32, z: u32) -> vec3<f32> {
    let i = ((z * n + y) * n + x) * 3u;
    return vec3<f32>(film_lut[i], film_lut[i + 1u], film_lut[i + 2u]);
}

fn sample_lut(c: vec3<f32>) -> vec3<f32> {
    let n = u32(u.lut_info.x);
    let pos = clamp01(c) * f32(n - 1u);
    let i = min(vec3<u32>(pos), vec3<u32>(n - 2u));
    let d = pos - vec3<f32>(i);
    let c00 = mix(lut_at(n, i.x, i.y, i.z), lut_at(n, i.x + 1u, i.y, i.z), d.x);
    let c10 = mix(lut_at(n, i.x, i.y + 1u, i.z), lut_at(n, i.x + 1u, i.y + 1u, i.z), d.x);
    let c01 = mix(lut_at(n, i.x, i.y, i.z + 1u), lut_at(n, i.x + 1u, i.y, i.z + 1u), d.x);
    let c11 = mix(lut_at(n, i.x, i.y + 1u, i.z + 1u), lut_at(n, i.x + 1u, i.y + 1u, i.z + 1u), d.x);
    return mix(mix(c00, c10, d.y), mix(c01, c11, d.y), d.z);
}

fn apply_cast(c: vec3<f32>) -> vec3<f32> {
    let y = luma(c);
    let ws = 1.0 - smoothstep(0.0, 0.5, y);
    let wh = smoothstep(0.5, 1.0, y);
    let wm = max(0.0, 1.0 - ws - wh);
    return c + u.cast_shadows.xyz * ws + u.cast_midtones.xyz * wm + u.cast_highlights.xyz * wh;
}

fn hash2(x: i32, y: i32, seed: u32) -> u32 {
    var h = (bitcast<u32>(x) * 0x8da6b343u) ^ (bitcast<u32>(y) * 0xd8163841u) ^ (seed * 0xcb1ab31fu);
    h = h ^ (h >> 16u);
    h = h * 0x7feb352du;
    h = h ^ (h >> 15u);
    h = h * 0x846ca68bu;
    h = h ^ (h >> 16u);
    return h;
}

fn hash_unit(x: i32, y: i32, seed: u32) -> f32 {
    return f32(hash2(x, y, seed) >> 8u) / 16777215.0 * 2.0 - 1.0;
}

fn value_noise(p: vec2<f32>, seed: u32) -> f32 {
    let f = floor(p);
    let i = vec2<i32>(f);
    var t = p - f;
    t = t * t * (3.0 - 2.0 * t);
    let a = hash_unit(i.x, i.y, seed);
    let b = hash_unit(i.x + 1, i.y, seed);
    let c = hash_unit(i.x, i.y + 1, seed);
    let d = hash_unit(i.x + 1, i.y + 1, seed);
    let top = a + (b - a) * t.x;
    let bot = c + (d - c) * t.x;
    return top + (bot - top) * t.y;
}

fn grain_noise(p: vec2<f32>, rough: f32, seed: u32) -> f32 {
    let n = value_noise(p, seed);
    if (rough <= 0.0) {
        return n;
    }
    let w = rough * 0.5;
    let n2 = value_noise(p * 2.0 + vec2<f32>(17.0), seed);
    return (n + w * n2) / (1.0 + w);
}

fn apply_grain(c: vec3<f32>, pix: vec2<u32>) -> vec3<f32> {
    let p = (vec2<f32>(pix) + vec2<f32>(0.5)) * u.grain.y;
    let seed = u.grain_seed.x;
    var noise = vec3<f32>(grain_noise(p, u.grain.z, seed));
    if (u.grain.w > 0.0) {
        let chroma = vec3<f32>(
            grain_noise(p, u.grain.z, seed + 1u),
            grain_noise(p, u.grain.z, seed + 2u),
            grain_noise(p, u.grain.z, seed + 3u)
        );
        noise = mix(noise, chroma, u.grain.w);
    }
    let l = luma(c);
    return c + noise * (u.grain.x * 0.12 * (0.5 + 2.0 * l * (1.0 - l)));
}

fn apply_vignette(c: vec3<f32>, v: vec4<f32>, uv: vec2<f32>, aspect: f32) -> vec3<f32> {
    if (v.x == 0.0) {
        return c;
    }
    var p = (uv - vec2<f32>(0.5)) * 2.0;
    if (v.z > 0.0) {
        p.x = p.x * (1.0 + (aspect - 1.0) * v.z);
    }
    var d = length(p);
    if (v.z < 0.0) {
        d = d + (max(abs(p.x), abs(p.y)) - d) * -v.z;
    }
    let start = 0.3 + v.y * 0.9;
    let m = smoothstep(start, start + max(v.w, 0.01), d);
    if (v.x < 0.0) {
        return c * (1.0 + v.x * m);
    }
    return mix(c, vec3<f32>(1.0), v.x * m);
}

fn bright_pass(c: vec3<f32>) -> vec4<f32> {
    let bt = u.glow.x;
    let ht = u.glow.y;
    let b = max(c - vec3<f32>(bt), vec3<f32>(0.0)) / max(1.0 - bt, 1e-3);
    let a = max(0.0, luma(c) - ht) / max(1.0 - ht, 1e-3);
    return vec4<f32>(b, a);
}
`
