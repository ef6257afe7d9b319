package geography

const sampleTopology = `{
  "type": "Topology",
  "transform": {"scale": [1, 1], "translate": [130, 30]},
  "objects": {
    "countries": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "Polygon", "id": "392", "properties": {"name": "Japan"}, "arcs": [[0, 1]]},
        {"type": "MultiPolygon", "id": 250, "properties": {"name": "France"}, "arcs": [[[-2]]]},
        {"type": "Polygon", "properties": {"name": "Nowhere"}, "arcs": [[0, 1]]},
        {"type": "Polygon", "id": "-99", "properties": {"name": "Disputed"}, "arcs": [[0, 1]]}
      ]
    }
  },
  "arcs": [
    [[0, 0], [10, 0], [0, 10]],
    [[10, 10], [-10, 0], [0, -10]]
  ]
}`

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"ISO_N3": "392", "NAME": "Japan"},
     "geometry": {"type": "Polygon", "coordinates": [[[130, 30], [140, 30], [140, 40], [130, 40], [130, 30]]]}},
    {"type": "Feature", "properties": {"ISO_N3": "-99", "NAME": "Kosovo"},
     "geometry": {"type": "Polygon", "coordinates": [[[20, 42], [21, 42], [21, 43], [20, 42]]]}},
    {"type": "Feature", "id": 76, "properties": {"NAME": "Brazil"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[-60, -10], [-50, -10], [-50, 0], [-60, -10]]]]}}
  ]
}`
